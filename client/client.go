package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"TuneFM/model"
)

// Client talks to the server's REST API. The session cookie set by login
// lives in the cookie jar, so every later request carries it automatically.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	signed bool
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:5000".
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// Authenticated reports whether a login or registration succeeded on this
// client since the last logout.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signed
}

func (c *Client) setSigned(v bool) {
	c.mu.Lock()
	c.signed = v
	c.mu.Unlock()
}

// Register creates an account. The server signs the new user in immediately.
func (c *Client) Register(name, email, password string) (*model.User, error) {
	var user model.User
	err := c.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	c.setSigned(true)
	return &user, nil
}

// Login signs in with email and password.
func (c *Client) Login(email, password string) (*model.User, error) {
	var user model.User
	err := c.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	c.setSigned(true)
	return &user, nil
}

// Logout ends the session on both sides.
func (c *Client) Logout() error {
	err := c.doJSON(http.MethodPost, "/api/auth/logout", nil, nil)
	c.setSigned(false)
	return err
}

// Me returns the signed-in user.
func (c *Client) Me() (*model.User, error) {
	var user model.User
	if err := c.doJSON(http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SongURL returns the streamable URL of a song.
func (c *Client) SongURL(song model.Song) string {
	return c.baseURL + "/songs/" + song.Path
}

// Upload sends a local MP3 file to the server's library.
func (c *Client) Upload(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &SyncError{Op: "upload", Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("song", filepath.Base(path))
	if err != nil {
		return &SyncError{Op: "upload", Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &SyncError{Op: "upload", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &SyncError{Op: "upload", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return &SyncError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return &SyncError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()
	return c.checkStatus("upload", resp)
}

// doJSON performs a JSON request against the API and decodes the response
// into out when out is non-nil.
func (c *Client) doJSON(method, path string, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &SyncError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return &SyncError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &SyncError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(op, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SyncError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// checkStatus maps error responses onto the client's error types.
func (c *Client) checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Message == "" {
		payload.Message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.setSigned(false)
		return ErrAuthRequired
	case http.StatusNotFound:
		return &NotFoundError{Message: payload.Message}
	case http.StatusBadRequest:
		return &ValidationError{Message: payload.Message}
	case http.StatusConflict:
		return &ConflictError{Message: payload.Message}
	default:
		return &SyncError{Op: op, Err: fmt.Errorf("server returned %s: %s", resp.Status, payload.Message)}
	}
}
