package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/itinerary"
)

type memoryCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	m.values[key] = value
	m.ttls[key] = ttl
}

func TestImageService_DestinationImage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID unsplash-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Kyoto travel destination", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		writeJSON(w, http.StatusOK, `{"results":[{"urls":{"regular":"https://images.example/kyoto.jpg"}}]}`)
	}))
	defer srv.Close()

	cache := newMemoryCache()
	s := NewImageService(srv.URL, "unsplash-key", cache, time.Hour, 5*time.Second)
	ctx := context.Background()

	assert.Equal(t, "https://images.example/kyoto.jpg", s.DestinationImage(ctx, "Kyoto"))
	assert.Equal(t, "https://images.example/kyoto.jpg", cache.values["image:destination:kyoto"])
	assert.Equal(t, time.Hour, cache.ttls["image:destination:kyoto"])

	assert.Equal(t, "https://images.example/kyoto.jpg", s.DestinationImage(ctx, " kyoto "))
	assert.EqualValues(t, 1, calls.Load(), "second lookup served from cache")
}

func TestImageService_Placeholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "Atlantis travel destination" {
			writeJSON(w, http.StatusOK, `{"results":[]}`)
			return
		}
		writeJSON(w, http.StatusForbidden, `{"errors":["rate limited"]}`)
	}))
	defer srv.Close()
	ctx := context.Background()

	var none *ImageService
	assert.Equal(t, itinerary.PlaceholderImage, none.DestinationImage(ctx, "Kyoto"))

	noKey := NewImageService(srv.URL, "", nil, time.Hour, time.Second)
	assert.Equal(t, itinerary.PlaceholderImage, noKey.DestinationImage(ctx, "Kyoto"))

	cache := newMemoryCache()
	s := NewImageService(srv.URL, "k", cache, time.Hour, time.Second)
	assert.Equal(t, itinerary.PlaceholderImage, s.DestinationImage(ctx, "Kyoto"))
	assert.Equal(t, itinerary.PlaceholderImage, s.DestinationImage(ctx, "Atlantis"))
	assert.Equal(t, itinerary.PlaceholderImage, s.DestinationImage(ctx, "   "))
	require.Empty(t, cache.values, "placeholders are never cached")
}
