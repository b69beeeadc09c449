// Package template defines the template engine contract used by the HTML
// renderers. The gotemplate subpackage adapts
// github.com/goliatone/go-template, which executes pongo2 templates.
package template
