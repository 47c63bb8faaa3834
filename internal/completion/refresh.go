package completion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/moviepilot"
)

// RefreshResult holds per-section counts and errors.
type RefreshResult struct {
	Counts map[Section]int
	Errors map[Section]error
}

// HasError reports whether any section failed.
func (r RefreshResult) HasError() bool {
	return len(r.Errors) > 0
}

// Error joins the section errors, or returns nil.
func (r RefreshResult) Error() error {
	var errs []error
	for _, sec := range AllSections {
		if err := r.Errors[sec]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sec, err))
		}
	}
	return errors.Join(errs...)
}

// Refresher fetches completion data from the server.
type Refresher struct {
	store     *Store
	mp        *moviepilot.Client
	serverURL string
}

// NewRefresher returns a refresher writing to store. serverURL keys the
// cache so switching servers drops stale ids.
func NewRefresher(store *Store, mp *moviepilot.Client, serverURL string) *Refresher {
	return &Refresher{store: store, mp: mp, serverURL: serverURL}
}

// fetchers maps each section to the list endpoint it is built from.
func (r *Refresher) fetchers() map[Section]func(context.Context) (*api.Response, error) {
	return map[Section]func(context.Context) (*api.Response, error){
		Sites:         r.mp.Site().List,
		Subscriptions: r.mp.Subscribe().List,
		Plugins: func(ctx context.Context) (*api.Response, error) {
			return r.mp.Plugin().List(ctx, "installed", false)
		},
	}
}

// RefreshAll fetches every section concurrently. A failed section keeps its
// previously cached items.
func (r *Refresher) RefreshAll(ctx context.Context) RefreshResult {
	result := RefreshResult{
		Counts: make(map[Section]int),
		Errors: make(map[Section]error),
	}
	var mu sync.Mutex
	record := func(sec Section, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors[sec] = err
			return
		}
		result.Counts[sec] = n
	}

	var g errgroup.Group
	for sec, fetch := range r.fetchers() {
		g.Go(func() error {
			n, err := r.refresh(ctx, sec, fetch)
			record(sec, n, err)
			return nil
		})
	}
	_ = g.Wait()
	return result
}

func (r *Refresher) refresh(ctx context.Context, sec Section, fetch func(context.Context) (*api.Response, error)) (int, error) {
	resp, err := fetch(ctx)
	if err != nil {
		return 0, err
	}
	items, err := ItemsFromPayload(sec, resp.Data)
	if err != nil {
		return 0, err
	}
	if err := r.store.Update(r.serverURL, sec, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Remember caches the items of a list payload the caller already fetched.
// Errors are returned but callers usually ignore them.
func Remember(store *Store, serverURL string, sec Section, data []byte) error {
	items, err := ItemsFromPayload(sec, data)
	if err != nil {
		return err
	}
	return store.Update(serverURL, sec, items)
}
