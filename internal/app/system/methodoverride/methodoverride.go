// Package methodoverride lets HTML forms, which can only submit GET and POST,
// reach PUT and DELETE routes.
package methodoverride

import (
	"net/http"
	"strings"
)

const (
	// FormField is the hidden input forms use to name the intended method.
	FormField = "_method"
	// Header is honoured for non-form clients.
	Header = "X-HTTP-Method-Override"
)

var allowed = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Middleware rewrites r.Method for POST requests carrying an override.
// It must run before routing.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := override(r); m != "" {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func override(r *http.Request) string {
	m := r.Header.Get(Header)
	if m == "" && isForm(r) {
		// Parsing is cached on r; later handlers read the same values.
		m = r.PostFormValue(FormField)
	}
	m = strings.ToUpper(strings.TrimSpace(m))
	if _, ok := allowed[m]; ok {
		return m
	}
	return ""
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
