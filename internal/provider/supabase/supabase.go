// Package supabase implements the identity provider contract against a
// Supabase project's GoTrue API. Credential verification, token signing and
// metadata storage all happen inside the managed platform; this client only
// speaks its REST surface.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
)

// Client talks to the /auth/v1 endpoints of a Supabase project. The anon
// key authenticates the application itself; per-user calls additionally
// carry the user's bearer token.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New builds a client for the given project URL and anon key. A trailing
// slash on the URL is tolerated.
func New(baseURL, anonKey string) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     model.Metadata `json:"data"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse covers both response shapes GoTrue uses: a session object
// wrapping the user, or (when email confirmation is pending) the bare user
// object at the top level.
type authResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	User        *model.Identity `json:"user"`

	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata model.Metadata `json:"user_metadata"`
}

// SignUp registers a new account with name/role metadata. The session is
// nil when the project requires email confirmation (GoTrue then returns
// the user without an access token).
func (c *Client) SignUp(ctx context.Context, email, password string, meta model.Metadata) (model.Identity, *model.Session, error) {
	var out authResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", signUpRequest{
		Email:    email,
		Password: password,
		Data:     meta,
	}, &out)
	if err != nil {
		return model.Identity{}, nil, err
	}
	if out.AccessToken != "" && out.User != nil {
		sess := model.Session{
			AccessToken: out.AccessToken,
			TokenType:   out.TokenType,
			ExpiresIn:   out.ExpiresIn,
		}
		return *out.User, &sess, nil
	}
	return model.Identity{ID: out.ID, Email: out.Email, Metadata: out.Metadata}, nil, nil
}

// SignInWithPassword exchanges credentials for a session via the password
// grant. Backend failures (wrong password, unconfirmed email, ...) come
// back as *provider.Error with the upstream message.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (model.Identity, model.Session, error) {
	var out authResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", passwordGrantRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	if out.User == nil || out.AccessToken == "" {
		return model.Identity{}, model.Session{}, &provider.Error{Message: "no session returned by identity backend"}
	}
	sess := model.Session{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
		ExpiresIn:   out.ExpiresIn,
	}
	return *out.User, sess, nil
}

// GetUser resolves an access token to its identity. Rejected tokens map to
// provider.ErrInvalidToken so the auth gate can answer 401 uniformly.
func (c *Client) GetUser(ctx context.Context, accessToken string) (model.Identity, error) {
	var ident model.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &ident); err != nil {
		var perr *provider.Error
		if errors.As(err, &perr) && (perr.Status == http.StatusUnauthorized || perr.Status == http.StatusForbidden) {
			return model.Identity{}, provider.ErrInvalidToken
		}
		return model.Identity{}, err
	}
	return ident, nil
}

// do performs one JSON request against the auth API. bearer overrides the
// anon key in the Authorization header for user-scoped calls.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode auth response: %w", err)
		}
	}
	return nil
}

// apiError extracts the human-readable message from a GoTrue error body.
// The field name has changed across versions, so every known spelling is
// tried before falling back to the status code.
func apiError(status int, body []byte) error {
	var e struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
		Err         string `json:"error"`
	}
	_ = json.Unmarshal(body, &e)
	msg := e.Msg
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = e.Description
	}
	if msg == "" {
		msg = e.Err
	}
	if msg == "" {
		msg = fmt.Sprintf("auth request failed with status %d", status)
	}
	return &provider.Error{Message: msg, Status: status}
}
