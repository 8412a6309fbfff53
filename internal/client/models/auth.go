package models

// Authentication is the credential attached to an Account or User. It is a
// closed set: OAuth or PAT. A nil Authentication means no credential yet.
type Authentication interface {
	// Token returns the access token, empty if not yet obtained.
	Token() string
	isAuthentication()
}

// OAuth is an authorization-code credential. ClientID and ClientSecret are
// always present; the token fields fill in as the flow progresses.
type OAuth struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	OAuthCode    string
}

// PAT is a personal access token credential.
type PAT struct {
	AccessToken string
}

func (o OAuth) Token() string { return o.AccessToken }
func (p PAT) Token() string   { return p.AccessToken }

func (OAuth) isAuthentication() {}
func (PAT) isAuthentication()   {}

// Credentials is the flat column view of an Authentication.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	OAuthCode    string
}

// AuthenticationFromCredentials picks the variant from stored columns: client
// id and secret make an OAuth credential, a bare access token makes a PAT,
// anything else is no credential.
func AuthenticationFromCredentials(c Credentials) Authentication {
	switch {
	case c.ClientID != "" && c.ClientSecret != "":
		return OAuth{
			AccessToken:  c.AccessToken,
			RefreshToken: c.RefreshToken,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			OAuthCode:    c.OAuthCode,
		}
	case c.AccessToken != "":
		return PAT{AccessToken: c.AccessToken}
	}
	return nil
}

// CredentialsOf spreads a into columns.
func CredentialsOf(a Authentication) Credentials {
	switch v := a.(type) {
	case OAuth:
		return Credentials{
			AccessToken:  v.AccessToken,
			RefreshToken: v.RefreshToken,
			ClientID:     v.ClientID,
			ClientSecret: v.ClientSecret,
			OAuthCode:    v.OAuthCode,
		}
	case PAT:
		return Credentials{AccessToken: v.AccessToken}
	}
	return Credentials{}
}
