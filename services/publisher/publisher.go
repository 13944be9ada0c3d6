package publisher

import (
	"errors"
	"fmt"
)

// Publisher represents a service for publishing extracted records
type Publisher interface {
	// Publish publishes one message under key, usually the shop name
	Publish(key string, message []byte) error

	// Flush makes published messages durable and trims streams
	Flush() error

	// Close closes the publisher
	Close() error
}

// Multi publishes every message to all of its publishers
type Multi []Publisher

// PartialError is returned when a message reached some publishers but not all
type PartialError struct {
	Delivered int
	Failed    int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("published to %d of %d publishers: %v", e.Delivered, e.Delivered+e.Failed, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Delivered reports whether a Publish result still left the message in at
// least one backend
func Delivered(err error) bool {
	var partial *PartialError
	return err == nil || errors.As(err, &partial)
}

// Publish publishes to each publisher and joins their errors. A failure that
// spares at least one publisher is a *PartialError.
func (m Multi) Publish(key string, message []byte) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(key, message); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) < len(m) {
		return &PartialError{Delivered: len(m) - len(errs), Failed: len(errs), Err: errors.Join(errs...)}
	}
	return errors.Join(errs...)
}

// Flush flushes each publisher
func (m Multi) Flush() error {
	var errs []error
	for _, p := range m {
		if err := p.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes each publisher
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Truncater is implemented by publishers that keep one snapshot per key
type Truncater interface {
	Truncate(key string) error
}

// Truncate truncates every publisher that supports it
func (m Multi) Truncate(key string) error {
	var errs []error
	for _, p := range m {
		if t, ok := p.(Truncater); ok {
			if err := t.Truncate(key); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
