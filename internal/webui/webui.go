// Package webui embeds the browser front end of the paraphrasing service.
package webui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// StaticFS returns an http.FileSystem for the embedded static files.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embed path is fixed at compile time.
		panic(err)
	}
	return http.FS(sub)
}

// Handler serves the front end mounted under /static/.
func Handler() http.Handler {
	return http.StripPrefix("/static", http.FileServer(StaticFS()))
}
