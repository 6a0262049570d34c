// Package webapp serves the embedded single-page frontend: submit a GitHub
// URL, review suggestions, upload clips, trigger generation, and poll status.
// Assets are compiled into the binary so the Lambda package needs no S3-hosted
// static site.
package webapp

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

//go:embed static
var staticFiles embed.FS

// Handler returns the frontend handler with gzip compression. Unknown paths
// fall back to index.html so the SPA owns client-side routing.
func Handler() http.Handler {
	content, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// embed guarantees the directory exists; a failure here is a build bug.
		panic(err)
	}
	fileServer := http.FileServer(http.FS(content))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			if _, err := fs.Stat(content, r.URL.Path[1:]); err != nil {
				r.URL.Path = "/"
			}
		}
		fileServer.ServeHTTP(w, r)
	})

	return gzhttp.GzipHandler(h)
}
