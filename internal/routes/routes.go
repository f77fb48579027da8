package routes

const (
	// Health
	Health = "/health"

	AuthBase = "/api/authentication"

	// Public endpoints
	SignUp  = "/signup"
	SignIn  = "/signin"
	Login   = "/login" // alias of SignIn kept for older clients
	Refresh = "/refresh"

	// Protected endpoints (AuthMiddleware)
	Logout         = "/logout"
	ChangePassword = "/change_password"
	Me             = "/me"
)
