package api

// SignUp is the registration form.
type SignUp struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// SignIn is the login form.
type SignIn struct {
	Username string `form:"username"`
	Password string `form:"password"`
}
