// Package revalidate invalidates cached pages on request of an authorized caller
package revalidate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/cache"
)

// ErrUnauthorized is returned when the caller's secret does not match
var ErrUnauthorized = errors.New("invalid or missing secret token")

// DefaultPaths are invalidated when no path is given
var DefaultPaths = []string{"/", "/long-form", "/shorts"}

// Result describes a successful invalidation
type Result struct {
	// Path is set when a single path was requested
	Path  string
	Paths []string
}

// Message returns the human readable outcome
func (r *Result) Message() string {
	if r.Path != "" {
		return "Revalidated path: " + r.Path
	}
	return "Successfully revalidated all pages"
}

// Service checks the shared secret and invalidates page cache entries
type Service struct {
	cache  cache.PageCache
	secret string
}

// NewService creates a revalidation service; an empty secret rejects every request
func NewService(pages cache.PageCache, secret string) *Service {
	return &Service{
		cache:  pages,
		secret: secret,
	}
}

// Authorize reports whether secret matches the configured secret
func (s *Service) Authorize(secret string) bool {
	if s.secret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1
}

// Revalidate invalidates path, or DefaultPaths when path is empty.
// Nothing is touched when the secret does not match.
func (s *Service) Revalidate(ctx context.Context, secret, path string) (*Result, error) {
	if !s.Authorize(secret) {
		log.Warn().Str("path", path).Msg("Rejected revalidation request")
		return nil, ErrUnauthorized
	}

	result := &Result{}
	if path = strings.TrimSpace(path); path != "" {
		result.Path = path
		result.Paths = []string{path}
	} else {
		result.Paths = append([]string(nil), DefaultPaths...)
	}

	if err := s.cache.Invalidate(ctx, result.Paths...); err != nil {
		return nil, fmt.Errorf("failed to revalidate %v: %w", result.Paths, err)
	}

	log.Info().Strs("paths", result.Paths).Msg("Revalidated pages")
	return result, nil
}
