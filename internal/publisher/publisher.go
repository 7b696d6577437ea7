package publisher

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request carries everything a platform client needs to publish one post.
type Request struct {
	Content        string
	ImageURL       string
	AccessToken    string
	PlatformUserID string // page id, IG business account id, or member URN
}

// Result is the platform's reference for a published post.
type Result struct {
	PlatformPostID  string
	PlatformPostURL string
}

// Publisher publishes content to a single social platform.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, req Request) (*Result, error)
}

// Registry maps platform names to their publishers.
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry builds a registry with the default platform clients.
func NewRegistry() *Registry {
	r := &Registry{publishers: make(map[string]Publisher)}
	r.Register(NewFacebook())
	r.Register(NewInstagram())
	r.Register(NewLinkedIn())
	return r
}

// Register adds or replaces the publisher for its platform.
func (r *Registry) Register(p Publisher) {
	r.publishers[p.Platform()] = p
}

// Get returns the publisher for platform, or an error for platforms without
// a publishing client yet.
func (r *Registry) Get(platform string) (Publisher, error) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("publishing to %s is not supported yet", platform)
	}
	return p, nil
}

// newHTTPClient is the shared client configuration for platform APIs.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}
