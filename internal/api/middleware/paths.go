package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitivePaths rewrites the leading path segments of a request to
// the canonical spelling given in segments, keyed by lower-case form. Only
// the first depth segments are considered, and rewriting stops at the first
// unknown segment, so identifiers are never touched.
func CaseInsensitivePaths(depth int, segments ...string) func(http.Handler) http.Handler {
	canonical := make(map[string]string, len(segments))
	for _, s := range segments {
		canonical[strings.ToLower(s)] = s
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := canonicalize(r.URL.Path, depth, canonical); ok {
				r2 := r.Clone(r.Context())
				r2.URL.Path = p
				r2.URL.RawPath = ""
				r = r2
			}
			next.ServeHTTP(w, r)
		})
	}
}

func canonicalize(path string, depth int, canonical map[string]string) (string, bool) {
	parts := strings.Split(path, "/")
	changed := false
	// parts[0] is the empty string before the leading slash.
	for i := 1; i < len(parts) && i <= depth; i++ {
		c, ok := canonical[strings.ToLower(parts[i])]
		if !ok {
			break
		}
		if c != parts[i] {
			parts[i] = c
			changed = true
		}
	}
	if !changed {
		return path, false
	}
	return strings.Join(parts, "/"), true
}
