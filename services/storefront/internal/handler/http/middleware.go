package http

import (
	"net/http"
	"strings"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return validator.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
}

// decodeValid is decodeJSON followed by tag validation.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	return validator.DecodeAndValidate(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
}
