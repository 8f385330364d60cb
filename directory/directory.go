// Package directory adapts the company user directory, a JSON document
// served over HTTP, into an in-process lookup keyed by email. The document
// is fetched at most once per TTL window; on fetch failure the last-known
// snapshot keeps being served, so the directory going down never takes the
// workflow with it.
package directory

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
)

// DefaultTTL is the freshness window after which a lookup triggers a refresh.
const DefaultTTL = 5 * time.Minute

// User is one directory entry. IsAuth mirrors the directory document's
// numeric authorization flag.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsAuth   int    `json:"is_auth"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Authorized reports whether the user may sign in at all.
func (u User) Authorized() bool {
	return u.IsAuth == 1
}

// Client is the process-wide directory cache. Safe for concurrent use;
// concurrent refreshes may race but converge on the same remote snapshot.
type Client struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client
	now        func() time.Time

	mu        sync.RWMutex
	snapshot  map[string]User
	fetchedAt time.Time
}

// NewClient creates a directory client for the given document URL.
// A non-positive ttl falls back to DefaultTTL.
func NewClient(url string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		url:        url,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		snapshot:   map[string]User{},
	}
}

// Lookup returns the email-keyed snapshot, refreshing it first when the TTL
// window has passed or the cache is empty. It never fails: a broken refresh
// is logged and the stale (possibly empty) snapshot is returned.
func (c *Client) Lookup() map[string]User {
	c.mu.RLock()
	fresh := c.now().Sub(c.fetchedAt) <= c.ttl && len(c.snapshot) > 0
	snapshot := c.snapshot
	c.mu.RUnlock()

	if fresh {
		return snapshot
	}

	if err := c.Refresh(); err != nil {
		log.Printf("⚠️  directory refresh failed, serving cached snapshot: %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Find resolves a single email in the current snapshot.
func (c *Client) Find(email string) (User, bool) {
	u, ok := c.Lookup()[email]
	return u, ok
}

// Refresh fetches the directory document unconditionally and swaps the
// snapshot on success. The cached snapshot is untouched on any failure.
func (c *Client) Refresh() error {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return errs.NewExternalServiceDegradedError("directory", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.NewExternalServiceDegradedError("directory", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	// The document is an object keyed by an internal id; only the entry
	// values matter, re-keyed by email.
	var doc map[string]User
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return errs.NewExternalServiceDegradedError("directory", err)
	}

	snapshot := make(map[string]User, len(doc))
	for _, u := range doc {
		if u.Email != "" {
			snapshot[u.Email] = u
		}
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}
