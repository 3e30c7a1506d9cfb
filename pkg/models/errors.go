package models

import (
	"errors"
	"fmt"
)

// ErrUnsupportedURL is returned when no scraper recognizes a URL.
var ErrUnsupportedURL = errors.New("unsupported URL, only amazon.in and flipkart.com are supported")

// NavigationError means the page failed to load after the one bounded retry.
// Fatal for this product this cycle.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError means the page loaded but no strategy produced a valid
// value for a required field.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.URL, e.Reason)
}

// NotificationError wraps a failed channel send. The dispatcher does not
// retry; the batch runner catches it at the per-product boundary.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
