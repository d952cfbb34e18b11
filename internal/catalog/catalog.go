// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package catalog caches the read-only role catalog for the lifetime of a session.
//
// The cache is an explicit object with a time-to-live and an Invalidate method,
// owned by whoever constructs it, rather than process-global state.
//
// Loading and invalidation are safe for concurrent use. The returned roles are
// shared with the cache and Expand fills them in place, so a catalog's roles
// have one owner: callers that read roles from several goroutines must not run
// Expand concurrently with those reads.
package catalog

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// DefaultTTL bounds how long a fetched catalog is served before reloading
const DefaultTTL = 15 * time.Minute

// Loader fetches roles and role permissions from the backend
type Loader interface {
	ListRoles(ctx context.Context, system bool) ([]models.Role, error)
	GetRoleAccess(ctx context.Context, uuid string) ([]models.AccessEntry, error)
}

// Catalog is a TTL cache over the role catalog
type Catalog struct {
	loader Loader
	system bool
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	group singleflight.Group

	mu        sync.Mutex
	roles     []*models.Role
	fetchedAt time.Time
	// gen changes on Invalidate; loads started before it are not cached
	gen uint64
}

// Option configures a Catalog
type Option func(*Catalog)

// WithTTL overrides DefaultTTL. A non-positive ttl caches until Invalidate.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock injects the time source
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithSystem restricts the catalog to system roles
func WithSystem(system bool) Option {
	return func(c *Catalog) { c.system = system }
}

// WithLogger sets the catalog logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// New creates an empty catalog backed by loader
func New(loader Loader, opts ...Option) *Catalog {
	c := &Catalog{
		loader: loader,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "catalog").Logger()
	return c
}

// Roles returns the cached catalog, loading it when empty or stale. Concurrent
// callers share a single backend request.
func (c *Catalog) Roles(ctx context.Context) ([]*models.Role, error) {
	c.mu.Lock()
	if c.fresh() {
		roles := c.roles
		c.mu.Unlock()
		return roles, nil
	}
	gen := c.gen
	c.mu.Unlock()

	v, err, shared := c.group.Do("roles:"+strconv.FormatUint(gen, 10), func() (any, error) {
		roles, err := c.loader.ListRoles(ctx, c.system)
		if err != nil {
			return nil, err
		}
		ptrs := make([]*models.Role, len(roles))
		for i := range roles {
			ptrs[i] = &roles[i]
		}

		c.mu.Lock()
		current := c.gen == gen
		if current {
			c.roles = ptrs
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()

		c.logger.Debug().Int("roles", len(ptrs)).Bool("cached", current).Msg("role catalog loaded")
		return ptrs, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug().Msg("joined in-flight catalog load")
	}
	return v.([]*models.Role), nil
}

// caller must hold c.mu
func (c *Catalog) fresh() bool {
	if c.roles == nil {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(c.fetchedAt) < c.ttl
}

// Invalidate drops the cached catalog so the next read reloads it
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles = nil
	c.fetchedAt = time.Time{}
	c.gen++
}

// Applications returns the sorted, de-duplicated applications across all roles
func (c *Catalog) Applications(ctx context.Context) ([]string, error) {
	roles, err := c.Roles(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var apps []string
	for _, r := range roles {
		for _, app := range r.Applications {
			if _, ok := seen[app]; ok {
				continue
			}
			seen[app] = struct{}{}
			apps = append(apps, app)
		}
	}
	sort.Strings(apps)
	return apps, nil
}

// Lookup finds a role by display name or uuid
func (c *Catalog) Lookup(ctx context.Context, ref string) (*models.Role, bool, error) {
	roles, err := c.Roles(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, r := range roles {
		if r.UUID == ref || r.DisplayName == ref {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// Expand loads the role's permissions on first use and caches them on the role.
// Concurrent expansions of one role share a single request; writing the role
// is left to its owner (see the package doc).
func (c *Catalog) Expand(ctx context.Context, role *models.Role) error {
	if role.AccessEntries == nil {
		v, err, _ := c.group.Do("access:"+role.UUID, func() (any, error) {
			return c.loader.GetRoleAccess(ctx, role.UUID)
		})
		if err != nil {
			return err
		}
		entries := v.([]models.AccessEntry)
		if entries == nil {
			entries = []models.AccessEntry{}
		}
		role.AccessEntries = entries
	}
	role.Expanded = true
	return nil
}
