// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

var secureHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	// SAMEORIGIN rather than DENY: the authoring UI previews player pages
	// in an iframe on the same origin.
	"X-Frame-Options": "SAMEORIGIN",
	"Referrer-Policy": "strict-origin-when-cross-origin",
}

// SecureHeaders stamps baseline security headers onto every response,
// story pages and API alike.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range secureHeaders {
			h.Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}
