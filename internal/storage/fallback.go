package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"docvault/internal/docpath"
)

// Resolver wraps Storage operations with legacy-path fallback. When an
// operation fails against a document's recorded key with ErrNotFound, the
// remaining candidate keys for the same offering and filename are tried in
// order. Every method reports which key actually worked so callers can
// detect and later reconcile legacy-stored rows.
type Resolver struct {
	store Storage
	paths *docpath.Resolver
}

// NewResolver builds a Resolver over the given store and path layout.
func NewResolver(store Storage, paths *docpath.Resolver) *Resolver {
	return &Resolver{store: store, paths: paths}
}

// candidatesFor lists the keys to try for a recorded key: the key itself
// first, then the path-resolver candidates derived from its offering id and
// trailing filename segment, minus any repeats.
func (r *Resolver) candidatesFor(key string) []string {
	offeringID, filename := docpath.SplitKey(key)
	out := []string{key}
	for _, c := range r.paths.Candidates(offeringID, filename) {
		if c != key {
			out = append(out, c)
		}
	}
	return out
}

// resolve runs op against each candidate key until one succeeds. A non-
// not-found error aborts immediately: infrastructure failures are not a
// reason to probe other paths. When every candidate is missing, a single
// ErrNotFound is propagated, never a partial result.
func resolve[T any](ctx context.Context, r *Resolver, key string, op func(context.Context, string) (T, error)) (T, string, error) {
	var zero T
	var lastErr error
	for _, candidate := range r.candidatesFor(key) {
		v, err := op(ctx, candidate)
		if err == nil {
			return v, candidate, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return zero, "", err
		}
		lastErr = err
	}
	return zero, "", lastErr
}

// GetResult bundles a streaming read with its object info.
type GetResult struct {
	Body io.ReadCloser
	Info ObjectInfo
}

// Download fetches the object recorded at key, falling back to legacy
// candidates. Returns the content and the key that resolved.
func (r *Resolver) Download(ctx context.Context, key string) (GetResult, string, error) {
	return resolve(ctx, r, key, func(ctx context.Context, k string) (GetResult, error) {
		body, info, err := r.store.Get(ctx, k)
		if err != nil {
			return GetResult{}, err
		}
		return GetResult{Body: body, Info: info}, nil
	})
}

// Delete removes the object recorded at key, falling back to legacy
// candidates. Returns the key that resolved.
func (r *Resolver) Delete(ctx context.Context, key string) (string, error) {
	_, resolved, err := resolve(ctx, r, key, func(ctx context.Context, k string) (struct{}, error) {
		return struct{}{}, r.store.Delete(ctx, k)
	})
	return resolved, err
}

// PresignGet signs a download URL for the object recorded at key, falling
// back to legacy candidates. Returns the URL and the key that resolved.
func (r *Resolver) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, string, error) {
	return resolve(ctx, r, key, func(ctx context.Context, k string) (string, error) {
		return r.store.PresignGet(ctx, k, expiry)
	})
}
