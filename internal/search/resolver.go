package search

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/reference"
)

// Resolver turns references into verses by fanning per-verse lookups out
// over a worker pool.
type Resolver struct {
	store domain.VerseStore
	pool  *ants.Pool
	log   logger.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver) error

// WithPoolSize sets the lookup worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) ResolverOption {
	return func(r *Resolver) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(log logger.Logger) ResolverOption {
	return func(r *Resolver) error {
		if log == nil {
			log = logger.NewNop()
		}
		r.log = log
		return nil
	}
}

// NewResolver creates a Resolver over store. Call Release when done.
func NewResolver(store domain.VerseStore, opts ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	r := &Resolver{store: store, pool: pool, log: logger.NewNop()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

// Release stops the worker pool.
func (r *Resolver) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// ExpandAndLookup parses ref, fans it out per verse and returns the stored
// verses in expanded order. Verses missing from the store are omitted and a
// verse listed twice is returned once.
func (r *Resolver) ExpandAndLookup(ctx context.Context, ref string) ([]domain.Verse, error) {
	keys, err := reference.ExpandReferenceToPerVerseList(ref)
	if err != nil {
		return nil, err
	}
	return r.lookupOrdered(ctx, keys)
}

// LookupReference is ExpandAndLookup for an already structured reference.
func (r *Resolver) LookupReference(ctx context.Context, ref reference.Reference) ([]domain.Verse, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return r.lookupOrdered(ctx, ref.PerVerse())
}

func (r *Resolver) lookupOrdered(ctx context.Context, keys []string) ([]domain.Verse, error) {
	found, err := r.LookupMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Verse, 0, len(found))
	emitted := make(map[string]struct{}, len(found))
	for _, k := range keys {
		v, ok := found[k]
		if !ok {
			continue
		}
		if _, dup := emitted[k]; dup {
			continue
		}
		emitted[k] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// LookupMany resolves every distinct canonical key once. Keys absent from
// the store are missing from the returned map. The first store error other
// than domain.ErrVerseNotFound aborts the batch.
func (r *Resolver) LookupMany(ctx context.Context, keys []string) (map[string]domain.Verse, error) {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		found    = make(map[string]domain.Verse, len(unique))
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, key := range unique {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		key := key
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			v, err := r.store.FindByReference(ctx, key)
			if errors.Is(err, domain.ErrVerseNotFound) {
				r.log.Debug("reference not in store", logger.String("reference", key))
				return
			}
			if err != nil {
				fail(err)
				return
			}

			mu.Lock()
			found[key] = v
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return found, nil
}
