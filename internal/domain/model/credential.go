package model

import "time"

// Credential is the bearer token observed on the host's own outgoing traffic,
// paired with the account identifier that scopes collection writes. Token holds
// the Authorization header value verbatim (including the "Bearer " scheme).
type Credential struct {
	Token      string
	Account    string
	CapturedAt time.Time
}

// Valid reports whether both the token and the account are present.
func (c Credential) Valid() bool {
	return c.Token != "" && c.Account != ""
}
