package cache

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ErrCacheMiss is returned by Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// CrawlKey is the key under which a shop's crawl hits are stored
func CrawlKey(shopName string) string {
	return "crawl:" + shopName
}

// GetJSON decodes the cached value of key into v
func GetJSON(c CacheService, key string, v any) error {
	data, err := c.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cached value for %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v encoded as JSON
func SetJSON(c CacheService, key string, v any, expiration time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, expiration)
}

// NopCache never stores anything; used when no cache is configured
type NopCache struct{}

func (NopCache) Get(string) ([]byte, error)              { return nil, ErrCacheMiss }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(string) error                     { return nil }
