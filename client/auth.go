package client

import (
	"context"
	"net/http"

	"taskcanvas/models"
)

// Signup registers a user and attaches the returned token to later calls.
func (c *Client) Signup(ctx context.Context, name, email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.SignupRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	c.setToken(resp.Token)
	return resp, nil
}

// Login authenticates and attaches the returned token to later calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	c.setToken(resp.Token)
	return resp, nil
}

// CurrentUser resolves token to its user. On success the token is adopted,
// which is how a stored session is resumed.
func (c *Client) CurrentUser(ctx context.Context, token string) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return models.User{}, err
	}
	c.setToken(token)
	return user, nil
}

// Logout revokes the current token on the server and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	token := c.Token()
	if token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
	c.setToken("")
	return err
}
