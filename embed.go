package pubsite

import (
	"embed"
	"io/fs"
	"net/http"
)

// EmbeddedAssets contains static assets shipped with the site:
// style.css with the light and dark theme variables.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func assetFS() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		panic(err)
	}
	return sub
}

func assetHandler() http.Handler {
	return http.FileServer(http.FS(assetFS()))
}
