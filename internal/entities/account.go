package entities

// Credentials is the persisted login triple. SessionToken is empty when the
// user is not in session.
type Credentials struct {
	Email        string
	Password     string
	SessionToken string
}

// Languages holds the user's native and learning language codes. Either may be empty.
type Languages struct {
	Native   string `json:"native"`
	Learning string `json:"learned"`
}

// IsSet reports whether both languages are known.
func (l Languages) IsSet() bool {
	return l.Native != "" && l.Learning != ""
}
