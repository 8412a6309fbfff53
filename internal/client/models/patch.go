package models

// Patch is a single-field update directive. The set is closed: every variant
// must handle both record types, so a new variant that forgets one of them
// does not compile.
type Patch interface {
	applyAccount(*Account)
	applyUser(*User)
}

type (
	SetAuthentication struct{ Value Authentication }
	SetEmail          struct{ Value string }
	SetFireflyID      struct{ Value string }
	SetCurrent        struct{ Value bool }
	SetRole           struct{ Value string }
	SetServerAddress  struct{ Value string }
	SetState          struct{ Value string }
	SetType           struct{ Value string }
	SetID             struct{ Value int64 }
)

func (p SetAuthentication) applyAccount(a *Account) { a.Auth = p.Value }
func (p SetAuthentication) applyUser(u *User)       { u.Auth = p.Value }

func (p SetEmail) applyAccount(a *Account) { a.Email = p.Value }
func (p SetEmail) applyUser(u *User)       { u.Email = p.Value }

func (p SetFireflyID) applyAccount(a *Account) { a.FireflyID = p.Value }
func (p SetFireflyID) applyUser(u *User)       { u.FireflyID = p.Value }

func (p SetCurrent) applyAccount(a *Account) { a.IsCurrent = p.Value }
func (p SetCurrent) applyUser(u *User)       { u.IsCurrent = p.Value }

func (p SetRole) applyAccount(a *Account) { a.Role = p.Value }
func (p SetRole) applyUser(u *User)       { u.Role = p.Value }

func (p SetServerAddress) applyAccount(a *Account) { a.ServerAddress = p.Value }
func (p SetServerAddress) applyUser(u *User)       { u.ServerAddress = p.Value }

func (p SetState) applyAccount(a *Account) { a.State = p.Value }
func (p SetState) applyUser(u *User)       { u.State = p.Value }

func (p SetType) applyAccount(a *Account) { a.Type = p.Value }
func (p SetType) applyUser(u *User)       { u.Type = p.Value }

// SetID moves the record to another primary key: the update that persists
// the patched record then targets that row.
func (p SetID) applyAccount(a *Account) { a.ID = p.Value }
func (p SetID) applyUser(u *User)       { u.ID = p.Value }
