package site

import (
	"fmt"
	"net/http"
	"os"
)

// Handler serves the static site in dir. Requests whose path matches a deny
// pattern get a 404 so server-side files never leak.
func Handler(dir string, deny []string) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site dir %s is not a directory", dir)
	}
	if err := ValidatePatterns(deny); err != nil {
		return nil, err
	}

	patterns := append([]string(nil), deny...)
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Denied(r.URL.Path, patterns) {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}), nil
}
