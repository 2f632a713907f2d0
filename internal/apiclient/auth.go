package apiclient

import (
	"context"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

type Identity struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

const reasonAuthFailed = "Something went wrong. Please try again."

// Login exchanges credentials for a token. The caller persists the token.
func (c *Client) Login(ctx context.Context, email, password string) Result[AuthResponse] {
	r := call[AuthResponse](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/auth/login",
		body:     loginRequest{Email: email, Password: password},
		fallback: reasonAuthFailed,
	})
	if r.OK && r.Value.Token == "" {
		return fail[AuthResponse]("Login response did not include a token", r.Status, nil)
	}
	return r
}

func (c *Client) Signup(ctx context.Context, name, email, password string) Result[AuthResponse] {
	return call[AuthResponse](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/auth/signup",
		body:     signupRequest{Name: name, Email: email, Password: password},
		fallback: reasonAuthFailed,
	})
}

// WhoAmI reports the signed-in user. Any failure reads as unauthenticated.
func (c *Client) WhoAmI(ctx context.Context) Identity {
	r := call[Identity](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/auth/whoami",
		auth:     true,
		fallback: reasonAuthFailed,
	})
	if !r.OK {
		return Identity{}
	}
	return r.Value
}
