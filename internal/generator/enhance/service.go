// Package enhance rewrites headlines through an external text-generation
// endpoint. Every failure degrades to the original text.
package enhance

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/common/metrics"
)

// Outcome records how an Enhance call ended.
type Outcome string

const (
	OutcomeEnhanced    Outcome = "enhanced"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeEmpty       Outcome = "empty_response"
	OutcomeExhausted   Outcome = "retries_exhausted"
	OutcomePermanent   Outcome = "permanent_error"
	OutcomeCancelled   Outcome = "cancelled"
)

// Result is the outcome of one rewrite. Text is the original headline
// unless Enhanced is true.
type Result struct {
	Text     string
	Enhanced bool
	Outcome  Outcome
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Service struct {
	cfg      Config
	rewriter Rewriter
	sleep    Sleeper
	logger   logger.Logger
}

type Option func(*Service)

// WithSleeper replaces the backoff wait.
func WithSleeper(s Sleeper) Option {
	return func(svc *Service) { svc.sleep = s }
}

// NewService builds the service. A nil rewriter is derived from cfg.
func NewService(cfg Config, rewriter Rewriter, log logger.Logger, opts ...Option) *Service {
	if rewriter == nil {
		rewriter = NewRewriter(cfg)
	}
	s := &Service{
		cfg:      cfg,
		rewriter: rewriter,
		sleep:    sleepContext,
		logger:   log.WithFields(map[string]interface{}{"component": "enhancement"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAvailable reports whether rewrite requests will be attempted.
func (s *Service) IsAvailable() bool {
	return s.cfg.Enabled && s.cfg.Endpoint != "" && s.cfg.APIKey != ""
}

// Enhance returns the rewritten headline, or the input when enhancement is
// unavailable or fails.
func (s *Service) Enhance(ctx context.Context, headline string) string {
	return s.EnhanceResult(ctx, headline).Text
}

// EnhanceResult is Enhance with the outcome attached.
func (s *Service) EnhanceResult(ctx context.Context, headline string) Result {
	res := s.enhance(ctx, headline)
	metrics.EnhancementOutcomes.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (s *Service) enhance(ctx context.Context, headline string) Result {
	original := Result{Text: headline}
	if !s.IsAvailable() {
		original.Outcome = OutcomeUnavailable
		return original
	}

	prompt := s.cfg.Prompt + headline
	attempts := max(s.cfg.MaxRetries, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		text, err := s.attempt(ctx, prompt)
		if err == nil {
			if text == "" {
				s.logger.Warn("enhancement returned empty text", map[string]interface{}{
					"headline": headline,
					"attempt":  attempt + 1,
				})
				original.Outcome = OutcomeEmpty
				return original
			}
			return Result{Text: text, Enhanced: true, Outcome: OutcomeEnhanced}
		}

		if ctx.Err() != nil {
			original.Outcome = OutcomeCancelled
			return original
		}

		status := statusOf(err)
		if !s.retryable(status) {
			perr := apperrors.NewPermanentRemoteError(status, err)
			s.logger.Error("enhancement failed", map[string]interface{}{
				"headline":   headline,
				"statusCode": status,
				"errorCode":  string(perr.Code),
				"error":      err,
			})
			original.Outcome = OutcomePermanent
			return original
		}

		terr := apperrors.NewTransientRemoteError(status, err)
		if attempt == attempts-1 {
			s.logger.Warn("enhancement retries exhausted", map[string]interface{}{
				"headline":   headline,
				"attempts":   attempts,
				"statusCode": status,
				"errorCode":  string(terr.Code),
			})
			break
		}

		delay := s.cfg.BaseDelay * time.Duration(1<<attempt)
		s.logger.Warn("enhancement request will be retried", map[string]interface{}{
			"attempt":    attempt + 1,
			"statusCode": status,
			"errorCode":  string(terr.Code),
			"delay":      delay.String(),
		})
		if err := s.sleep(ctx, delay); err != nil {
			original.Outcome = OutcomeCancelled
			return original
		}
	}

	original.Outcome = OutcomeExhausted
	return original
}

func (s *Service) attempt(ctx context.Context, prompt string) (string, error) {
	actx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.rewriter.Rewrite(actx, prompt)
	label := "ok"
	if err != nil {
		label = "transport_error"
		if code := statusOf(err); code != 0 {
			label = strconv.Itoa(code)
		}
	}
	metrics.EnhancementRequests.WithLabelValues(label).Inc()
	return text, err
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// retryable: rate limiting always; transport failures and configured
// statuses only when RetryTransient is on.
func (s *Service) retryable(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if !s.cfg.RetryTransient {
		return false
	}
	return status == 0 || slices.Contains(s.cfg.TransientStatusCodes, status)
}

// BatchEnhance rewrites headlines with at most maxConcurrent requests in
// flight. Output order matches input order.
func (s *Service) BatchEnhance(ctx context.Context, headlines []string, maxConcurrent int) []string {
	results := s.BatchEnhanceResults(ctx, headlines, maxConcurrent)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

// BatchEnhanceResults is BatchEnhance with per-item outcomes.
func (s *Service) BatchEnhanceResults(ctx context.Context, headlines []string, maxConcurrent int) []Result {
	results := make([]Result, len(headlines))
	if !s.IsAvailable() {
		for i, h := range headlines {
			results[i] = Result{Text: h, Outcome: OutcomeUnavailable}
		}
		return results
	}

	if maxConcurrent <= 0 {
		maxConcurrent = s.cfg.MaxConcurrent
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i, h := range headlines {
		g.Go(func() error {
			metrics.EnhancementInFlight.Inc()
			defer metrics.EnhancementInFlight.Dec()

			results[i] = s.EnhanceResult(ctx, h)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
