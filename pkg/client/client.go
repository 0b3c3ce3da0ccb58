// Package client is the HTTP client for the taskboard API. It speaks the
// {success, message, data} response envelope, attaches the stored bearer
// token to authenticated calls, and classifies failures so the session
// layer can react to each kind.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/enterprise/taskboard/pkg/session"
)

const defaultTimeout = 15 * time.Second

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the taskboard API. It implements session.Resolver and
// session.LoginExchanger, reading the bearer token from the same
// credential store the session manager writes to.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  session.CredentialStore
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, tokens session.CredentialStore, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     log.With().Str("component", "client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and returns the envelope's data payload. Transport
// failures map to ErrNetwork, credential rejections to ErrUnauthorized,
// undecodable bodies to ErrMalformedResponse, and any other rejection to
// an *APIError carrying the backend message.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, ok, err := c.tokens.Load()
		if err != nil {
			return nil, fmt.Errorf("load credential: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: no stored credential", ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ExchangeLogin trades a username and password for an access token. The
// token is returned, not stored; persisting it is the session manager's
// call to make.
func (c *Client) ExchangeLogin(ctx context.Context, username, password string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, false)
	if err != nil {
		return "", err
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: login response missing access token", ErrMalformedResponse)
	}
	return body.AccessToken, nil
}

// flexID tolerates backends that serialize identifiers as JSON numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// roleDesignator accepts both the bare-string form ("ROLE_ADMIN") and the
// object form ({"name": "ROLE_ADMIN"}) that older backends emit.
type roleDesignator string

func (r *roleDesignator) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = roleDesignator(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = roleDesignator(obj.Name)
	return nil
}

type mePayload struct {
	ID       flexID           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email"`
	FullName string           `json:"full_name"`
	Roles    []roleDesignator `json:"roles"`
}

// Resolve fetches the identity behind the stored credential.
func (c *Client) Resolve(ctx context.Context) (*session.Identity, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return nil, err
	}
	var me mePayload
	if err := json.Unmarshal(data, &me); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if me.Username == "" {
		return nil, fmt.Errorf("%w: identity missing username", ErrMalformedResponse)
	}
	roles := make([]string, 0, len(me.Roles))
	for _, r := range me.Roles {
		if r != "" {
			roles = append(roles, string(r))
		}
	}
	return session.NewIdentity(string(me.ID), me.Username, me.Email, me.FullName, roles), nil
}

// Logout asks the backend to revoke the presented token. A failure is not
// fatal to the local logout; callers typically log and move on.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true)
	return err
}

// Project is the client-side view of a project.
type Project struct {
	ID          flexID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	OwnerID     flexID   `json:"owner_id"`
	MemberIDs   []string `json:"member_ids"`
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	data, err := c.do(ctx, http.MethodGet, "/projects", nil, true)
	if err != nil {
		return nil, err
	}
	var out []Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// Task is the client-side view of a task.
type Task struct {
	ID         flexID `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	ProjectID  flexID `json:"project_id"`
	AssigneeID flexID `json:"assignee_id"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items      []Task `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

func (c *Client) Tasks(ctx context.Context, projectID string, page, limit int) (*TaskPage, error) {
	path := fmt.Sprintf("/tasks?page=%d&limit=%d", page, limit)
	if projectID != "" {
		path = fmt.Sprintf("/tasks/project/%s?page=%d&limit=%d", projectID, page, limit)
	}
	data, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var out TaskPage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// User is the client-side view of an account, admin listing only.
type User struct {
	ID       flexID           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email"`
	FullName string           `json:"full_name"`
	Enabled  bool             `json:"enabled"`
	Roles    []roleDesignator `json:"roles"`
}

// RoleNames returns the user's roles as plain strings.
func (u User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r))
	}
	return out
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	data, err := c.do(ctx, http.MethodGet, "/users", nil, true)
	if err != nil {
		return nil, err
	}
	var out []User
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}
