package api

import (
	"context"
	"net/http"

	"tourism-app/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login maneja POST /auth/login.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Signup maneja POST /auth/signup.
func (c *HTTPClient) Signup(ctx context.Context, input domain.SignupInput) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", input, &out)
	return out, err
}

// ForgotPassword maneja POST /auth/forgot-password.
func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
}

// ResetPassword maneja POST /auth/reset-password.
func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", resetPasswordRequest{Token: token, Password: password}, nil)
}

// Logout maneja POST /auth/logout. Solo se usa si la invalidacion remota
// esta habilitada.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
