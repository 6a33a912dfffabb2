package middleware

import (
	"context"
	"net/http"
	"strings"
)

// SignerHeader carries the caller's signing identity. Signature verification
// happens at the gateway; by the time a request reaches this service the
// header value is the authenticated wallet identity.
const SignerHeader = "X-Signer"

type signerContextKey struct{}

// SignerMiddleware copies the signer identity from the request header into
// the request context.
func SignerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signer := strings.TrimSpace(r.Header.Get(SignerHeader))
		if signer != "" {
			r = r.WithContext(context.WithValue(r.Context(), signerContextKey{}, signer))
		}
		next.ServeHTTP(w, r)
	})
}

// SignerFromContext returns the signer identity, or empty when the request
// carried none.
func SignerFromContext(ctx context.Context) string {
	signer, _ := ctx.Value(signerContextKey{}).(string)
	return signer
}
