// Package models defines the client-side account and user records and the
// patch directives applied to them.
package models

// Account is one configured server connection.
//
// Optional string fields use "" for absent; the repositories store "" as NULL.
type Account struct {
	ID            int64
	ServerAddress string
	State         string
	IsCurrent     bool
	Auth          Authentication
	Email         string
	FireflyID     string
	Role          string
	Type          string
}

// Apply folds patches over a copy of a in list order. When two patches target
// the same field the later one wins.
func (a Account) Apply(patches ...Patch) Account {
	for _, p := range patches {
		p.applyAccount(&a)
	}
	return a
}

// AccessToken returns the token of the attached credential, if any.
func (a Account) AccessToken() string {
	if a.Auth == nil {
		return ""
	}
	return a.Auth.Token()
}
