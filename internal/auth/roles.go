package auth

// Role names used in JWT claims and the Authorize middleware.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
