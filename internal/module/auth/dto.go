package auth

// LoginForm is the login page form.
type LoginForm struct {
	Username string `form:"username" label:"Usuário" binding:"required,notblank,max=100"`
	Password string `form:"password" label:"Senha" binding:"required,max=72"`
	Next     string `form:"next"`
}

// loginRequest is the body of POST {api}/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the backend answer to a successful login.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}
