package helpers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"ping":true}`, string(body))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"pong":"Klebeband für Öl"}`))
	}))
	defer server.Close()

	data, err := PostJSON(context.Background(), nil, server.URL, map[string]string{"Authorization": "Bearer secret"}, []byte(`{"ping":true}`))
	require.NoError(t, err)
	assert.Equal(t, `{"pong":"Klebeband für Öl"}`, string(data))
}

func TestPostJSONNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "für" in ISO-8859-1
		w.Write([]byte{'"', 'f', 0xfc, 'r', '"'})
	}))
	defer server.Close()

	data, err := PostJSON(context.Background(), server.Client(), server.URL, nil, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, `"für"`, string(data))
}

func TestPostJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := PostJSON(context.Background(), nil, server.URL, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "boom", statusErr.Body)
	assert.False(t, statusErr.IsRateLimited())

	// Test with rate limiting
	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = PostJSON(context.Background(), nil, serverRateLimited.URL, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "60", statusErr.RetryAfter)
}

func TestPostJSONCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PostJSON(ctx, nil, server.URL, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostJSONInvalidURL(t *testing.T) {
	_, err := PostJSON(context.Background(), nil, "http://invalid.url.that.does.not.exist", nil, nil)
	assert.Error(t, err)
}
