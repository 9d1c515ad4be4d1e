package domain

// Connection is one live transport session between a client and the
// server. It carries at most one authenticated user; before
// authentication it has none. Only the session gateway transitions it.
type Connection struct {
	ID   string
	user *User
}

func NewConnection(id string) Connection {
	return Connection{ID: id}
}

// Bind returns a copy of the connection carrying the authenticated user.
func (c Connection) Bind(u User) Connection {
	c.user = &u
	return c
}

// Authenticated reports the bound user, if any.
func (c Connection) Authenticated() (User, bool) {
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}
