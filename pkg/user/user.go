// Package user describes the acting user that validation and deletion rules
// consult. A nil User stands for a trusted backend process.
package user

import "slices"

type User interface {
	// IsAdmin reports whether the user administers the named service, which
	// is the store's frontend name.
	IsAdmin(service string) bool
	IsHuman() bool
	// UserIDs lists every identity the user may act as.
	UserIDs() []string
}

// FirstID returns the first identity of u, or "" when u is nil or has none.
func FirstID(u User) string {
	if u == nil {
		return ""
	}
	ids := u.UserIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Owns reports whether id is one of u's identities.
func Owns(u User, id string) bool {
	return u != nil && slices.Contains(u.UserIDs(), id)
}

// Static is a fixed User, handy for scripts and tests.
type Static struct {
	IDs []string
	// AdminOf lists the services the user administers; "*" means all.
	AdminOf []string
	Human   bool
}

func (s *Static) IsAdmin(service string) bool {
	return slices.Contains(s.AdminOf, "*") || slices.Contains(s.AdminOf, service)
}

func (s *Static) IsHuman() bool {
	return s.Human
}

func (s *Static) UserIDs() []string {
	return s.IDs
}
