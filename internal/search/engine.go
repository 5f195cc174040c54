package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
)

// Engine runs the tiered keyword search cascade against a VerseStore.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	store   domain.VerseStore
	policy  Policy
	monitor Monitor
	log     logger.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPolicy replaces the keyword-count dispatch table.
func WithPolicy(p Policy) Option {
	return func(e *Engine) error {
		if err := p.Validate(); err != nil {
			return err
		}
		e.policy = p
		return nil
	}
}

// WithMonitor sets the tier observer. nil restores the no-op monitor.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// WithLogger sets the engine logger. nil restores the no-op logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) error {
		if log == nil {
			log = logger.NewNop()
		}
		e.log = log
		return nil
	}
}

// NewEngine creates a search engine over store.
func NewEngine(store domain.VerseStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	e := &Engine{
		store:   store,
		policy:  DefaultPolicy(),
		monitor: noopMonitor{},
		log:     logger.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Search selects tiers by keyword count, runs them in priority order and
// merges their results, first occurrence of a reference winning.
//
// Multi-keyword results always end with the cascade sentinel. Single-keyword
// results end with the sparse sentinel when fewer than
// domain.SparseThreshold verses matched.
func (e *Engine) Search(ctx context.Context, keywords []string) ([]domain.Verse, error) {
	kws, err := normalizeKeywords(keywords)
	if err != nil {
		return nil, err
	}

	rule, err := e.policy.Select(len(kws))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		e.log.Debug("search completed",
			logger.Strings("keywords", kws),
			logger.Int("tiers", len(rule.Tiers)),
			logger.Duration("elapsed", time.Since(start)),
		)
	}()

	if rule.Standalone {
		return e.standalone(ctx, rule.Tiers[0], kws)
	}
	return e.cascade(ctx, rule.Tiers, kws)
}

func (e *Engine) standalone(ctx context.Context, tier Tier, kws []string) ([]domain.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits, err := e.RunTier(ctx, tier, kws)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Verse, len(hits), len(hits)+1)
	copy(out, hits)
	if len(out) < domain.SparseThreshold {
		out = append(out, domain.SparseSentinel())
	}
	return out, nil
}

func (e *Engine) cascade(ctx context.Context, tiers []Tier, kws []string) ([]domain.Verse, error) {
	capacity := 1
	for _, t := range tiers {
		capacity += t.Cap()
	}

	out := make([]domain.Verse, 0, capacity)
	seen := make(map[string]struct{}, capacity)

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits, err := e.RunTier(ctx, tier, kws)
		if err != nil {
			return nil, err
		}

		for _, v := range hits {
			if _, dup := seen[v.Reference]; dup {
				continue
			}
			seen[v.Reference] = struct{}{}
			out = append(out, v)
		}
	}

	return append(out, domain.CascadeSentinel()), nil
}

// RunTier issues the single store query for tier and truncates the result
// to the tier cap. Store failures come back as *SearchTierFailure, except
// cancellation which is returned as the context error.
func (e *Engine) RunTier(ctx context.Context, tier Tier, keywords []string) ([]domain.Verse, error) {
	pred := domain.NewPredicate(tier.Operator(), keywords)

	start := time.Now()
	hits, err := e.store.FindByPredicate(ctx, pred, tier.Cap())
	elapsed := time.Since(start)
	if err == nil && len(hits) > tier.Cap() {
		hits = hits[:tier.Cap()]
	}
	e.monitor.TierCompleted(tier, len(hits), elapsed, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.log.Warn("search tier failed",
			logger.String("tier", tier.String()),
			logger.String("predicate", pred.Text),
			logger.Error(err),
		)
		return nil, &SearchTierFailure{Tier: tier, Err: err}
	}

	e.log.Debug("search tier done",
		logger.String("tier", tier.String()),
		logger.String("predicate", pred.Text),
		logger.Int("hits", len(hits)),
		logger.Duration("elapsed", elapsed),
	)
	return hits, nil
}

func normalizeKeywords(keywords []string) ([]string, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return nil, ErrBlankKeyword
		}
		out[i] = kw
	}
	return out, nil
}
