package middleware

import (
	"net/http"
	"strings"

	"github.com/unrolled/secure"
)

type header struct{ key, value string }

func withHeaders(next http.Handler, hs ...header) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range hs {
			w.Header().Set(h.key, h.value)
		}
		next.ServeHTTP(w, r)
	})
}

// NoStore keeps clients and proxies from caching health data.
func NoStore(next http.Handler) http.Handler {
	return withHeaders(next,
		header{"Cache-Control", "no-store, no-cache, must-revalidate, max-age=0"},
		header{"Pragma", "no-cache"},
		header{"Expires", "0"},
	)
}

var secureMiddleware = secure.New(secure.Options{
	FrameDeny:          true,
	ContentTypeNosniff: true,
	BrowserXssFilter:   true,
	ReferrerPolicy:     "strict-origin-when-cross-origin",
	PermissionsPolicy:  "camera=(), microphone=(), geolocation=()",
})

func SecureHeaders(next http.Handler) http.Handler {
	return secureMiddleware.Handler(next)
}

// CORS answers preflight requests and tags responses for cross-origin use.
// allowOrigin is a comma separated list; "" or "*" allows any origin.
func CORS(allowOrigin string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	wildcard := strings.TrimSpace(allowOrigin) == "" || strings.TrimSpace(allowOrigin) == "*"
	for _, o := range strings.Split(allowOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies mws so that the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
