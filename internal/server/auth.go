package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authenticator admits or rejects a websocket handshake
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// TokenAuth accepts requests carrying a shared token, either as the "token" query
// parameter or as an "Authorization: Bearer" header.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authenticate(r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
