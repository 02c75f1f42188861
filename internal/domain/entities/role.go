package entities

import "fmt"

// Role is the capacity in which a person is attached to a company.
type Role int

// Person roles.
const (
	RoleHead Role = iota + 1
	RoleFounder
	RoleOwner
)

// AllRoles lists every role in a fixed order.
var AllRoles = []Role{RoleHead, RoleFounder, RoleOwner}

// ParseRole resolves a role tag such as "owner".
func ParseRole(s string) (Role, error) {
	switch s {
	case "head":
		return RoleHead, nil
	case "founder":
		return RoleFounder, nil
	case "owner":
		return RoleOwner, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string {
	switch r {
	case RoleHead:
		return "head"
	case RoleFounder:
		return "founder"
	case RoleOwner:
		return "owner"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleHead, RoleFounder, RoleOwner:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
