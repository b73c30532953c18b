package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/boss/internal/errors"
)

// Login exchanges credentials for an access token.
//
// The token endpoint takes an OAuth2 password form: the email is sent as
// "username". A 401 here means the credentials were rejected, not that a
// session expired, so the unauthorized observers are not fired.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*Token, error) {
	form := url.Values{}
	form.Set("username", in.Email)
	form.Set("password", in.Password)

	req := request{
		method:      http.MethodPost,
		path:        "/auth/token",
		body:        []byte(form.Encode()),
		contentType: contentTypeForm,
	}

	var token Token
	if err := c.do(ctx, req, &token); err != nil {
		if errors.Is(err, errors.KindUnauthorized) {
			return nil, errors.NewInvalidCredentialsError(err)
		}
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.New(errors.ErrCodeDecode, errors.KindInternal, "token response did not contain an access token")
	}
	if token.TokenType == "" {
		token.TokenType = "bearer"
	}
	return &token, nil
}

// Me returns the operator the current token belongs to
func (c *Client) Me(ctx context.Context) (*User, error) {
	req := request{method: http.MethodGet, path: "/auth/me", authenticated: true}

	var user User
	if err := c.do(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
