// Package provider adapts external translation services to one interface and
// resolves a translation by walking an ordered registry of them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider is a single external translation service.
type Provider interface {
	// Name identifies the provider in logs, metrics and stored records.
	Name() string
	// Available reports whether the provider can be called at all, typically
	// whether its credential is configured. Unavailable providers are skipped
	// without a network call.
	Available() bool
	// SupportsAutoSource reports whether the provider accepts "auto" as the
	// source language.
	SupportsAutoSource() bool
	// Translate performs exactly one outbound call.
	Translate(ctx context.Context, req Request) (string, error)
}

// Request is the input of a single provider call.
type Request struct {
	Text   string
	Source string
	Target string
}

var (
	// ErrAllProvidersFailed matches any *AllProvidersFailedError.
	ErrAllProvidersFailed = errors.New("all translation providers failed")
	// ErrNotConfigured marks a provider skipped for lack of credentials.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrMissingTranslation marks a response without the expected translation field.
	ErrMissingTranslation = errors.New("response has no translation")
	// ErrUntranslated marks output equal to the input text.
	ErrUntranslated = errors.New("provider returned the text untranslated")
)

// ProviderError is the failure of one provider attempt.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned when every registered provider failed.
type AllProvidersFailedError struct {
	Attempts []*ProviderError
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersFailed.Error() + ": no providers registered"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return ErrAllProvidersFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}
