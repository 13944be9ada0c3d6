package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents failed calls to the extraction service
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents undecodable service responses
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting by the service
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeStorage represents run ledger errors
	ErrorTypeStorage ErrorType = "storage"
)

// PipelineError is an error raised while processing a shop
type PipelineError struct {
	Type    ErrorType
	Shop    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Shop, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Shop, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the same shop may succeed on a later run
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, shop, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Shop:    shop,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(shop, message string, err error) *PipelineError {
	return New(ErrorTypeNetwork, shop, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(shop, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, shop, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(shop string, retryAfter string) *PipelineError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, shop, message, nil)
}

// NewCache creates a new cache error
func NewCache(shop, message string, err error) *PipelineError {
	return New(ErrorTypeCache, shop, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(shop, message string, err error) *PipelineError {
	return New(ErrorTypePublisher, shop, message, err)
}

// NewValidation creates a new validation error
func NewValidation(shop, message string) *PipelineError {
	return New(ErrorTypeValidation, shop, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewStorage creates a new storage error
func NewStorage(shop, message string, err error) *PipelineError {
	return New(ErrorTypeStorage, shop, message, err)
}

// IsRetryable reports whether err carries a retryable PipelineError
func IsRetryable(err error) bool {
	var pe *PipelineError
	return stderrors.As(err, &pe) && pe.IsRetryable()
}

// TypeOf returns the type of the first PipelineError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type, true
	}
	return "", false
}
