package directory

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDoc = `{
	"1": {"email": "ana@x.com", "name": "Ana Souza", "is_auth": 1, "password": "$2a$10$hash"},
	"2": {"email": "bruno@x.com", "name": "Bruno Lima", "is_auth": 0, "password": "$2a$10$hash2"},
	"3": {"email": "", "name": "orphan entry", "is_auth": 1}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, ttl time.Duration) (*Client, *time.Time) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	c := NewClient(srv.URL, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLookupKeysSnapshotByEmail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(usersDoc))
	}, time.Minute)

	users := c.Lookup()
	require.Len(t, users, 2, "entries without an email must be dropped")

	ana, ok := c.Find("ana@x.com")
	require.True(t, ok)
	assert.Equal(t, "Ana Souza", ana.Name)
	assert.True(t, ana.Authorized())

	bruno, ok := c.Find("bruno@x.com")
	require.True(t, ok)
	assert.False(t, bruno.Authorized())
}

func TestLookupHonorsTTLWindow(t *testing.T) {
	var fetches int32
	c, now := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Write([]byte(usersDoc))
	}, 5*time.Minute)

	c.Lookup()
	c.Lookup()
	c.Lookup()
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches), "lookups inside the window must hit the cache")

	*now = now.Add(5*time.Minute + time.Second)
	c.Lookup()
	assert.EqualValues(t, 2, atomic.LoadInt32(&fetches), "a lookup past the window must refetch")
}

func TestLookupServesStaleSnapshotOnFailure(t *testing.T) {
	var failing atomic.Bool
	c, now := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(usersDoc))
	}, time.Minute)

	require.Len(t, c.Lookup(), 2)

	failing.Store(true)
	*now = now.Add(2 * time.Minute)

	users := c.Lookup()
	assert.Len(t, users, 2, "a failed refresh must fall back to the cached snapshot")
	_, ok := c.Find("ana@x.com")
	assert.True(t, ok)
}

func TestLookupColdStartWithBrokenDirectory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Minute)

	users := c.Lookup()
	assert.Empty(t, users, "cold start with a broken directory yields an empty snapshot, not a panic")
}

func TestRefreshErrorOnMalformedDocument(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}, time.Minute)

	err := c.Refresh()
	require.Error(t, err)
	assert.Empty(t, c.Lookup())
}
