package shared

import (
	"net/http"
	"net/url"
	"strings"
)

// maxFormBytes caps the size of an urlencoded request body.
const maxFormBytes = 64 << 10

// ParseForm parses an application/x-www-form-urlencoded body, bounded by
// maxFormBytes. Query parameters are not merged in.
func ParseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

// FormString returns the first value for key, or "" when absent.
func FormString(values url.Values, key string) string {
	return values.Get(key)
}

// FormBool interprets the first value for key as a checkbox state:
// "true", "on" and "1" (case-insensitive) are true, anything else or an
// absent key is false.
func FormBool(values url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(key))) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}
