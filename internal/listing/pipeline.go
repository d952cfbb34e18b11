// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package listing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Page is one fetched page of rows plus the total row count across all pages
type Page[T any] struct {
	Rows  []T
	Total int
}

// Fetcher loads the page described by a query
type Fetcher[T any] interface {
	Fetch(ctx context.Context, q Query) (Page[T], error)
}

// FetchFunc adapts a function to Fetcher
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

func (f FetchFunc[T]) Fetch(ctx context.Context, q Query) (Page[T], error) {
	return f(ctx, q)
}

// State is the pipeline's output contract
type State[T any] struct {
	Rows         []T
	TotalCount   int
	IsLoading    bool
	Err          error
	FiltersDirty bool
	Query        Query
}

// Options configures a Pipeline
type Options struct {
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Pipeline keeps a query and the latest page fetched for it. Every change to
// the query triggers a fetch; text changes are debounced. Responses are tagged
// with a sequence number and only the response to the most recent fetch is kept.
type Pipeline[T any] struct {
	ctx      context.Context
	fetcher  Fetcher[T]
	debounce *Debouncer
	logger   zerolog.Logger

	mu    sync.Mutex
	query Query
	state State[T]
	seq   uint64
	done  chan struct{}
}

// New creates a pipeline. Nothing is fetched until a setter or Refetch is called.
// ctx bounds every fetch the pipeline issues.
func New[T any](ctx context.Context, fetcher Fetcher[T], initial Query, opts Options) *Pipeline[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = TextDebounce
	}
	p := &Pipeline[T]{
		ctx:      ctx,
		fetcher:  fetcher,
		debounce: NewDebouncer(opts.Debounce),
		logger:   opts.Logger.With().Str("component", "listing").Logger(),
		query:    initial.clone(),
	}
	p.state.Query = p.query.clone()
	p.state.FiltersDirty = p.query.FiltersDirty()
	return p
}

// Query returns the current query
func (p *Pipeline[T]) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.clone()
}

// Snapshot returns the current state
func (p *Pipeline[T]) Snapshot() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Rows = append([]T(nil), p.state.Rows...)
	s.Query = p.state.Query.clone()
	return s
}

// Refetch reloads the current page, e.g. after a mutation
func (p *Pipeline[T]) Refetch() {
	p.fetch()
}

// SetPage moves to a 1-based page
func (p *Pipeline[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	p.update(func(q *Query) { q.Page = page })
}

// SetPerPage changes the page size and returns to page one
func (p *Pipeline[T]) SetPerPage(perPage int) {
	p.update(func(q *Query) {
		q.PerPage = perPage
		q.Page = 1
	})
}

// SetSort changes the sort column and direction
func (p *Pipeline[T]) SetSort(column string, desc bool) {
	p.update(func(q *Query) {
		q.SortBy = column
		q.Desc = desc
	})
}

// SetStatuses replaces the status filter
func (p *Pipeline[T]) SetStatuses(statuses ...models.Status) {
	p.update(func(q *Query) {
		q.Statuses = append([]models.Status(nil), statuses...)
		q.Page = 1
	})
}

// SetApplications replaces the application filter
func (p *Pipeline[T]) SetApplications(apps ...string) {
	p.update(func(q *Query) {
		q.Applications = append([]string(nil), apps...)
		q.Page = 1
	})
}

// SetText changes the free-text filter. The fetch waits for the debounce period.
func (p *Pipeline[T]) SetText(text string) {
	p.mu.Lock()
	p.query.Text = text
	p.query.Page = 1
	p.state.FiltersDirty = p.query.FiltersDirty()
	p.mu.Unlock()

	p.debounce.Trigger(p.fetch)
}

// ClearFilters removes every filter and reloads page one
func (p *Pipeline[T]) ClearFilters() {
	p.debounce.Stop()
	p.update(func(q *Query) {
		q.Text = ""
		q.Statuses = nil
		q.Applications = nil
		q.Page = 1
	})
}

// Settle flushes a pending debounced fetch and waits for the latest fetch to land
func (p *Pipeline[T]) Settle(ctx context.Context) error {
	for {
		p.debounce.Flush()

		p.mu.Lock()
		loading, done := p.state.IsLoading, p.done
		p.mu.Unlock()

		if !loading && !p.debounce.Pending() {
			return nil
		}
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close discards any pending debounced fetch
func (p *Pipeline[T]) Close() {
	p.debounce.Stop()
}

func (p *Pipeline[T]) update(fn func(q *Query)) {
	p.mu.Lock()
	fn(&p.query)
	p.state.FiltersDirty = p.query.FiltersDirty()
	p.mu.Unlock()

	p.fetch()
}

func (p *Pipeline[T]) fetch() {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	q := p.query.clone()
	if !p.state.IsLoading {
		p.done = make(chan struct{})
	}
	p.state.IsLoading = true
	p.mu.Unlock()

	p.logger.Debug().Uint64("seq", seq).Int("page", q.Page).Str("order_by", q.OrderBy()).Msg("fetching")

	go func() {
		page, err := p.fetcher.Fetch(p.ctx, q)

		p.mu.Lock()
		defer p.mu.Unlock()

		if seq != p.seq {
			p.logger.Debug().Uint64("seq", seq).Uint64("latest", p.seq).Msg("discarding stale response")
			return
		}

		if err != nil {
			p.state.Rows = nil
			p.state.TotalCount = 0
			p.state.Err = err
		} else {
			p.state.Rows = page.Rows
			p.state.TotalCount = page.Total
			p.state.Err = nil
		}
		p.state.Query = q
		p.state.FiltersDirty = q.FiltersDirty()
		p.state.IsLoading = false
		close(p.done)
	}()
}
