package session

// User is the identity attached to an authenticated session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// State is a point-in-time snapshot of the session.
//
// Invariants (hold before and after every transition):
//   - IsAuthenticated implies Token != "" and User != nil.
//   - Token == "" implies !IsAuthenticated.
type State struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Token           string `json:"token"`
	User            *User  `json:"user"`
	HasHydrated     bool   `json:"-"`
}

// snapshot is the persisted form of the session.
type snapshot struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	User  *User  `json:"user"`
}
