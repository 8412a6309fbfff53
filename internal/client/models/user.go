package models

// User is the later revision of Account. It adds the external profile
// identifier and the connectivity notification switch. A User without a
// server address is local.
type User struct {
	ID                       int64
	ServerAddress            string
	State                    string
	IsCurrent                bool
	Auth                     Authentication
	Email                    string
	FireflyID                string
	Role                     string
	Type                     string
	Identifier               string
	ConnectivityNotification bool
}

// IsLocal reports whether u is not bound to any server.
func (u User) IsLocal() bool {
	return u.ServerAddress == ""
}

// Identification is the label shown for u.
func (u User) Identification() string {
	if u.IsLocal() {
		return "local"
	}
	return u.Email
}

// AccessToken returns the token of a remote user's credential. Local users
// never have one.
func (u User) AccessToken() string {
	if u.IsLocal() || u.Auth == nil {
		return ""
	}
	return u.Auth.Token()
}

// Apply folds patches over a copy of u in list order. A local user only
// takes SetCurrent; the other patches describe a server profile and are
// ignored, so a patch never turns a local user into a remote one.
func (u User) Apply(patches ...Patch) User {
	local := u.IsLocal()
	for _, p := range patches {
		if _, ok := p.(SetCurrent); local && !ok {
			continue
		}
		p.applyUser(&u)
	}
	return u
}
