package domain

// RoleAdmin is the only role value that grants edit affordances. Comparison is case-sensitive.
const RoleAdmin = "admin"

func IsAdminRole(role string) bool { return role == RoleAdmin }

// Identity is the authenticated-identity handle returned by the auth collaborator.
type Identity struct {
	ID    string
	Email string
}

// Session is the visitor-wide view of who is signed in.
type Session struct {
	User    *Identity
	IsAdmin bool
}

func Anonymous() Session { return Session{} }

func (s Session) Authenticated() bool { return s.User != nil }

type AuthEventKind string

const (
	SignedIn  AuthEventKind = "SIGNED_IN"
	SignedOut AuthEventKind = "SIGNED_OUT"
)

// AuthEvent is one auth-state-change notification.
type AuthEvent struct {
	Kind     AuthEventKind
	Identity *Identity
}

// User is the local backend's credential record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}
