// Package platform contains one adapter per social network. Every adapter
// translates the generic publish contract into that platform's HTTP calls
// and never lets an error escape its boundary: failures come back inside
// the result struct so the orchestrator can aggregate partial success.
package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/transfer"
)

// Media is an already-materialized upload: the orchestrator hands adapters
// a buffered file plus the public URL it was mirrored to, so no adapter
// ever parses multipart itself.
type Media struct {
	Path      string
	Bytes     []byte
	PublicURL string
	MIME      string
}

func (m *Media) HasBytes() bool {
	return m != nil && len(m.Bytes) > 0
}

type PublishRequest struct {
	Description   string
	Media         *Media
	ScheduledTime time.Time // zero value means publish immediately
}

func (r *PublishRequest) IsScheduled() bool {
	return !r.ScheduledTime.IsZero()
}

type PublishResult struct {
	Success   bool
	PostID    string
	MediaID   string
	Scheduled bool
	ErrCode   string
	Err       string
}

func failure(code, msg string) *PublishResult {
	return &PublishResult{Success: false, ErrCode: code, Err: msg}
}

// Publisher is the capability surface every adapter implements.
type Publisher interface {
	Publish(ctx context.Context, acct *models.SocialAccount, req *PublishRequest) *PublishResult
	TestConnection(ctx context.Context, acct *models.SocialAccount) *transfer.ConnectionTest
}

// Finalizer is implemented by adapters whose publish flow is two-phase:
// the scheduler calls Finalize once a deferred post's time has arrived.
type Finalizer interface {
	Finalize(ctx context.Context, acct *models.SocialAccount, mediaID string) (postID string, err error)
}

// InsightsFetcher is implemented by adapters that can pull real
// per-post engagement numbers. Platforms without it get placeholder
// analytics from the sync service.
type InsightsFetcher interface {
	Insights(ctx context.Context, acct *models.SocialAccount, postID string) (*transfer.InsightSet, error)
}

// Registry maps a platform name to its adapter, replacing per-call-site
// switches on the platform string.
type Registry struct {
	publishers map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

func (r *Registry) Register(platform string, p Publisher) {
	r.publishers[platform] = p
}

func (r *Registry) Lookup(platform string) (Publisher, bool) {
	p, ok := r.publishers[platform]
	return p, ok
}

// Insights returns the platform's analytics hook, if it has one.
func (r *Registry) Insights(platform string) (InsightsFetcher, bool) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, false
	}
	f, ok := p.(InsightsFetcher)
	return f, ok
}

// Finalizer returns the platform's finalize hook, if it has one.
func (r *Registry) Finalizer(platform string) (Finalizer, bool) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, false
	}
	f, ok := p.(Finalizer)
	return f, ok
}

func defaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// NewDefaultRegistry wires up every supported platform adapter against a
// shared HTTP client.
func NewDefaultRegistry(client *http.Client, redditUserAgent string) *Registry {
	r := NewRegistry()
	r.Register(models.PlatformFacebook, NewFacebook(client))
	r.Register(models.PlatformInstagram, NewInstagram(client))
	r.Register(models.PlatformLinkedin, NewLinkedIn(client))
	r.Register(models.PlatformTwitter, NewTwitter())
	r.Register(models.PlatformTiktok, NewTikTok(client))
	r.Register(models.PlatformReddit, NewReddit(client, redditUserAgent))
	return r
}
