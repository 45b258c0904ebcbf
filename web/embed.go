// Package web embeds the server rendered templates and the static assets
// served under /static.
package web

import "embed"

// Templates holds the layout, page, and partial templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and the billing screen script.
//
//go:embed static/**/*
var Static embed.FS
