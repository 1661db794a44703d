package domain

// Identity is the caller as confirmed by the CRM login endpoint.
type Identity struct {
	ID         string
	Name       string
	Email      string
	Role       Role
	Department string
}
