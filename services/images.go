package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"itinera/itinerary"
)

const UnsplashBaseURL = "https://api.unsplash.com"

// ImageCache remembers resolved destination images. Misses and errors are
// indistinguishable to callers.
type ImageCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type ImageService struct {
	client    *resty.Client
	accessKey string
	cache     ImageCache
	ttl       time.Duration
}

// NewImageService builds an Unsplash-backed lookup; cache may be nil.
func NewImageService(baseURL, accessKey string, cache ImageCache, ttl, timeout time.Duration) *ImageService {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &ImageService{client: c, accessKey: accessKey, cache: cache, ttl: ttl}
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// DestinationImage never fails: any problem yields the itinerary placeholder.
func (s *ImageService) DestinationImage(ctx context.Context, destination string) string {
	destination = strings.TrimSpace(destination)
	if s == nil || s.accessKey == "" || destination == "" {
		return itinerary.PlaceholderImage
	}

	key := imageCacheKey(destination)
	if s.cache != nil {
		if url, ok := s.cache.Get(ctx, key); ok {
			return url
		}
	}

	url, err := s.search(ctx, destination)
	if err != nil {
		log.Warn().Err(err).Str("destination", destination).Msg("⚠️  Unsplash lookup failed — using placeholder")
		return itinerary.PlaceholderImage
	}
	if url == "" {
		return itinerary.PlaceholderImage
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, url, s.ttl)
	}
	return url
}

func (s *ImageService) search(ctx context.Context, destination string) (string, error) {
	var out unsplashSearchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+s.accessKey).
		SetQueryParams(map[string]string{
			"query":    destination + " travel destination",
			"per_page": "1",
		}).
		SetResult(&out).
		Get("/search/photos")
	if err != nil {
		return "", fmt.Errorf("unsplash request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unsplash error (%d): %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	return out.Results[0].URLs.Regular, nil
}

func imageCacheKey(destination string) string {
	return "image:destination:" + strings.ToLower(strings.TrimSpace(destination))
}

// ─── Redis cache ──────────────────────────────────────────────────────────────

type RedisImageCache struct {
	conn *redis.Client
}

func NewRedisImageCache(url string) (*RedisImageCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return &RedisImageCache{conn: redis.NewClient(opts)}, nil
}

func (c *RedisImageCache) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx).Err()
}

func (c *RedisImageCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.conn.Get(ctx, key).Result()
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

func (c *RedisImageCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.conn.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("image cache write failed")
	}
}

func (c *RedisImageCache) Close() error {
	return c.conn.Close()
}
