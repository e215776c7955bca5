package betafeatures

// OptionState is the tri-state value of a beta feature option for one user.
// Unset is the initial state before any explicit choice or auto-enrollment.
type OptionState int

// Option states.
const (
	StateUnset OptionState = iota
	StateEnabled
	StateDisabled
)

// String returns a human-readable name for the state.
func (s OptionState) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// User is a request-scoped snapshot of the person the preferences are being
// assembled for. The option map is the state as loaded from the account
// store; the Engine works on its own copy and never writes through it.
type User struct {
	ID       string
	LoggedIn bool
	// Skin is the name of the rendering skin for the current request.
	Skin string

	options map[string]OptionState
}

// NewUser builds a user snapshot from an option-state map. The map is copied.
func NewUser(id string, options map[string]OptionState) *User {
	u := &User{ID: id, options: make(map[string]OptionState, len(options))}
	for k, v := range options {
		u.options[k] = v
	}
	return u
}

// Option returns the user's state for the named feature option.
func (u *User) Option(key string) OptionState {
	return u.options[key]
}

// optionsCopy returns a mutable copy of the user's option states.
func (u *User) optionsCopy() map[string]OptionState {
	out := make(map[string]OptionState, len(u.options))
	for k, v := range u.options {
		out[k] = v
	}
	return out
}
