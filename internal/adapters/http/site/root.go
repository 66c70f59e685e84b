// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"
)

// Register serves the landing page at exactly "/" and its assets under /site/.
// Other unmatched paths stay 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	mux.Handle("GET /site/", http.StripPrefix("/site", files))
}
