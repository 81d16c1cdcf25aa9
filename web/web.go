// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"
)

//go:embed templates/*.html static/*
var files embed.FS

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Templates parses every page template with the shared helper funcs.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"longDate":  longDate,
		"isoTime":   func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"localTime": func(t time.Time) string { return t.UTC().Format("2006-01-02T15:04") },
		"join":      strings.Join,
		"inc":       func(i int) int { return i + 1 },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).ParseFS(files, "templates/*.html")
}

// longDate renders a YYYY-MM-DD date as "May 1, 2024", leaving other input untouched.
func longDate(v string) string {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return v
	}
	return t.Format("January 2, 2006")
}
