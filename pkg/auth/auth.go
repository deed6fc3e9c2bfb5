package auth

// Level is the authorization a layer's data source requires.
type Level string

const (
	Public Level = "public"
	User   Level = "user"
	Admin  Level = "admin"

	AdminGroup string = "admin"
)

// Identity of an authenticated caller.
type Identity struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CallerContext is built once per data request from the caller's session.
type CallerContext struct {
	User          *Identity `json:"user,omitempty"`
	Group         string    `json:"group,omitempty"`
	LandcareGroup string    `json:"landcare_group,omitempty"`
}

func (c *CallerContext) IsAuthenticated() bool {
	return c != nil && c.User != nil
}

// CheckAuth reports whether caller satisfies the required level.
// Unknown levels are denied.
func CheckAuth(required Level, caller *CallerContext) bool {
	switch required {
	case "", Public:
		return true
	case User:
		return caller.IsAuthenticated()
	case Admin:
		return caller != nil && caller.Group == AdminGroup
	}

	return false
}
