package domain

// Roles carried in the session token.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
