package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"postedit/internal/httpx"
)

var (
	ErrUnauthorized = httpx.ErrUnauthorized
	ErrNotFound     = httpx.ErrNotFound
)

// Post mirrors the backend's post document. Only fields the editor reads are modeled.
type Post struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}

// PostUpdate is the PUT /posts/{id} body.
type PostUpdate struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}

// Client talks to the posts endpoints.
type Client struct {
	http *httpx.Client
}

func New(h *httpx.Client) *Client { return &Client{http: h} }

func postPath(id string) string { return "/posts/" + url.PathEscape(id) }

// GetPost reads a single post.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	if err := c.http.GetJSON(ctx, postPath(id), &p); err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// UpdatePost replaces the editable fields of a post. The response body is ignored.
func (c *Client) UpdatePost(ctx context.Context, id string, u PostUpdate) error {
	if u.Tags == nil {
		u.Tags = []string{}
	}
	if err := c.http.PutJSON(ctx, postPath(id), u, nil); err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	return nil
}

// Status returns the HTTP status behind err, or 0 for transport errors.
func Status(err error) int {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// ServerMessage returns the server-provided message behind err, if any.
func ServerMessage(err error) string {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		return se.Msg
	}
	return ""
}
