package provider

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"translingo/internal/detect"
	"translingo/internal/models"
)

// SourceDetector guesses the source language for providers that cannot
// detect it themselves.
type SourceDetector interface {
	Detect(text string) string
}

// Resolver walks a Registry and returns the first usable translation.
type Resolver struct {
	registry *Registry
	detector SourceDetector
	logger   *logrus.Logger
}

// Result is a successful resolution.
type Result struct {
	Text     string
	Provider string
}

// NewResolver builds a resolver over reg. A nil detector falls back to the
// Unicode heuristic; a nil logger to a fresh logrus logger.
func NewResolver(reg *Registry, detector SourceDetector, logger *logrus.Logger) *Resolver {
	if detector == nil {
		detector = detect.Heuristic{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{registry: reg, detector: detector, logger: logger}
}

// Registry exposes the chain the resolver walks.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve attempts every registered provider in order, once each, and
// returns the first success. When all fail it returns *AllProvidersFailedError.
func (r *Resolver) Resolve(ctx context.Context, text, source, target string) (*Result, error) {
	if source == "" {
		source = models.AutoLanguage
	}
	var (
		attempts []*ProviderError
		detected string
	)
	log := r.logger.WithFields(logrus.Fields{
		"source_lang": source,
		"target_lang": target,
		"text_length": len(text),
	})

	for _, entry := range r.registry.Entries() {
		p := entry.Provider
		name := p.Name()
		if !p.Available() {
			log.WithField("provider", name).Debug("Skipping unconfigured provider")
			recordAttempt(name, outcomeSkipped, 0)
			attempts = append(attempts, &ProviderError{Provider: name, Err: ErrNotConfigured})
			continue
		}

		req := Request{Text: text, Source: source, Target: target}
		if source == models.AutoLanguage && !p.SupportsAutoSource() {
			if detected == "" {
				detected = r.detector.Detect(text)
				log.WithField("detected_lang", detected).Debug("Detected source language heuristically")
			}
			req.Source = detected
		}

		start := time.Now()
		out, err := p.Translate(ctx, req)
		duration := time.Since(start)
		outcome := outcomeError
		if err == nil {
			switch {
			case strings.TrimSpace(out) == "":
				err = ErrMissingTranslation
			case entry.RejectUntranslated && strings.EqualFold(strings.TrimSpace(out), strings.TrimSpace(text)):
				err = ErrUntranslated
				outcome = outcomeUntranslated
			}
		}
		if err != nil {
			recordAttempt(name, outcome, duration)
			log.WithError(err).WithFields(logrus.Fields{
				"provider":    name,
				"duration_ms": duration.Milliseconds(),
			}).Warn("Translation provider failed, falling back")
			attempts = append(attempts, &ProviderError{Provider: name, Err: err})
			continue
		}

		recordAttempt(name, outcomeSuccess, duration)
		recordResolution(true, len(text))
		log.WithFields(logrus.Fields{
			"provider":    name,
			"duration_ms": duration.Milliseconds(),
		}).Info("Translation completed successfully")
		return &Result{Text: out, Provider: name}, nil
	}

	recordResolution(false, len(text))
	failure := &AllProvidersFailedError{Attempts: attempts}
	log.WithError(failure).Error("All translation providers failed")
	return nil, failure
}
