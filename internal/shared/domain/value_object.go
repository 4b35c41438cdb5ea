package domain

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// ActorRole identifies which side of the marketplace an actor is on. Every
// core operation receives the acting party explicitly; there is no ambient
// session state.
type ActorRole string

const (
	RoleStudent ActorRole = "student"
	RoleTutor   ActorRole = "tutor"
)

// Equals checks if two roles are equal.
func (r ActorRole) Equals(other ValueObject) bool {
	otherRole, ok := other.(ActorRole)
	return ok && r == otherRole
}

// Valid reports whether the role is one of the known marketplace roles.
func (r ActorRole) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}
