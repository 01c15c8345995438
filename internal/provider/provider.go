// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider wraps the external citation sources behind a single
// interface. Each client owns its own rate limiter and retry policy and
// normalizes provider-specific responses into types.Citation.
// See docs/ARCHITECTURE § Providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Provider names, used in chains, cache entries, and provenance.
const (
	NameOpenAlex        = "openalex"
	NameSemanticScholar = "semantic_scholar"
	NameGrounded        = "grounded"
	NameWebSearch       = "websearch"
	NameRecall          = "recall"
)

// Client searches a single external source for the best citation matching a
// query. A nil citation with nil error means the provider answered but found
// nothing; that outcome is valid and never retried. Errors are always of
// type *Error so the orchestrator can classify them.
type Client interface {
	Name() string
	SearchPaper(ctx context.Context, query string) (*types.Citation, error)
}

// Kind classifies a provider failure. The set is closed: the orchestrator
// switches on it to decide logging, never to abort the chain.
type Kind int

const (
	// KindNotFound is an explicit 404 from the provider.
	KindNotFound Kind = iota

	// KindRateLimited means the retry ceiling was exhausted on 429s.
	KindRateLimited

	// KindTransient covers network failures and 5xx after retries.
	KindTransient

	// KindClientError covers non-429 4xx responses and malformed payloads.
	KindClientError
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindClientError:
		return "client_error"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by every provider client.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind returns the classification of a provider error, or KindTransient
// for errors that did not originate in a provider client.
func ErrKind(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}

// classifyStatus maps a terminal HTTP status to an error kind. Callers only
// reach this after the retry layer has given up.
func classifyStatus(provider string, status int) *Error {
	switch {
	case status == http.StatusNotFound:
		return &Error{Provider: provider, Kind: KindNotFound, Err: fmt.Errorf("HTTP %d", status)}
	case status == http.StatusTooManyRequests:
		return &Error{Provider: provider, Kind: KindRateLimited, Err: fmt.Errorf("quota exceeded after retries (HTTP %d)", status)}
	case status >= 500:
		return &Error{Provider: provider, Kind: KindTransient, Err: fmt.Errorf("HTTP %d", status)}
	default:
		return &Error{Provider: provider, Kind: KindClientError, Err: fmt.Errorf("HTTP %d", status)}
	}
}

// transportErr wraps a transport-level failure as a transient provider error.
func transportErr(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindTransient, Err: err}
}

// newLimiter builds a token bucket with burst 1, which enforces a minimum
// interval between calls to one provider even under concurrent callers.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = 1
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
