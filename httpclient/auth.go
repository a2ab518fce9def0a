package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthRawHeader sends the token as-is in the named header.
	AuthRawHeader
	// AuthAPIKeyQuery sends the key as a query parameter.
	AuthAPIKeyQuery
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type  AuthType
	Token string
	// Name is the header (AuthRawHeader) or query parameter (AuthAPIKeyQuery).
	Name string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// RawHeaderAuth sends token unmodified in header name.
func RawHeaderAuth(name, token string) *AuthConfig {
	return &AuthConfig{Type: AuthRawHeader, Name: name, Token: token}
}

// QueryKeyAuth sends key as the query parameter name.
func QueryKeyAuth(name, key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKeyQuery, Name: name, Token: key}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Token == "" {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthRawHeader:
		name := a.Name
		if name == "" {
			name = "Authorization"
		}
		req.Header.Set(name, a.Token)
	case AuthAPIKeyQuery:
		q := req.URL.Query()
		q.Set(a.Name, a.Token)
		req.URL.RawQuery = q.Encode()
	}
}
