// Package site serves a browser view of the live polls.
package site

import (
	"context"
	"net/http"
)

// Prefix is where the poll pages are mounted.
const Prefix = "/polls/"

// Register attaches the embedded poll pages to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(Prefix, http.StripPrefix(Prefix, http.FileServer(FS())))
}
