package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMessage(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := NewNetwork("shop_sks", "crawl failed", cause)
	assert.Equal(t, "[network] shop_sks: crawl failed - connection refused", err.Error())
	assert.True(t, err.IsRetryable())
	assert.ErrorIs(t, err, cause)

	err = NewValidation("shop_sks", "no start URLs")
	assert.Equal(t, "[validation] shop_sks: no start URLs", err.Error())
	assert.False(t, err.IsRetryable())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("shop: %w", NewRateLimit("a", "60"))))
	assert.True(t, IsRetryable(NewNetwork("a", "crawl failed", nil)))
	assert.False(t, IsRetryable(NewParsing("a", "bad body", nil)))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestRateLimitMessage(t *testing.T) {
	assert.Equal(t, "[rate_limit] a: rate limited; retry after 60", NewRateLimit("a", "60").Error())
	assert.Equal(t, "[rate_limit] a: rate limited", NewRateLimit("a", "").Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NewStorage("a", "insert failed", nil))

	typ, ok := TypeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeStorage, typ)

	_, ok = TypeOf(stderrors.New("plain"))
	assert.False(t, ok)
}
