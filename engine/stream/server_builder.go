package stream

import (
	"net/http"
	"time"
)

// ServerBuilderOption is a functional option for configuring a Server during construction.
type ServerBuilderOption func(*server)

// WithOnControl sets the callback that receives every valid client control message.
// The callback runs on the connection's read goroutine.
//
// Parameters:
//   - fn: the control handler
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithOnControl(fn func(Control)) ServerBuilderOption {
	return func(s *server) {
		s.onControl = fn
	}
}

// WithCheckOrigin overrides the origin check of the upgrader. All origins are accepted by default.
//
// Parameters:
//   - fn: the origin check
//
// Returns:
//   - ServerBuilderOption: option function to apply
func WithCheckOrigin(fn func(r *http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithWriteTimeout bounds how long a single frame write may block on a slow client.
func WithWriteTimeout(d time.Duration) ServerBuilderOption {
	return func(s *server) {
		s.writeTimeout = d
	}
}
