package domain

import "context"

// Credentials is the locally persisted session identity. An empty Token
// means no user is logged in; authenticated cart operations are gated
// on its presence.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// LoggedIn reports whether a usable auth token is present.
func (c Credentials) LoggedIn() bool {
	return c.Token != ""
}

// CredentialStore is the local key-value store holding the session
// token and username. Load returns zero-value Credentials when nothing
// is stored; that is not an error.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}
