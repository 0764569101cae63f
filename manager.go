// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package ompplaces

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// Manager wraps worker launches, handing each launch its own place from a
// shared [Pool].
type Manager struct {
	pool      *Pool
	enabled   bool
	log       logr.Logger
	lookupEnv func(string) (string, bool)
}

// NewManager returns a new Manager. Unless binding is disabled, the pool gets
// populated on first use: the topology is enumerated for each mask of the
// bind specification and partitioned into places. Managers sharing an
// already populated pool reuse its places.
func NewManager(ctx context.Context, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseStrategy(string(o.strategy)); err != nil {
		return nil, err
	}
	cfg := o.config
	if cfg == nil {
		envcfg, err := ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		cfg = &envcfg
	}
	m := &Manager{
		pool:      o.pool,
		enabled:   cfg.Enabled(),
		log:       o.log,
		lookupEnv: o.lookupEnv,
	}
	if !m.enabled {
		m.log.Info("CPU binding disabled", "env", EnvBind)
		return m, nil
	}
	populated, err := m.pool.Populate(func() ([]*Place, error) {
		return buildPlaces(ctx, &o, *cfg)
	})
	if err != nil {
		return nil, err
	}
	if populated {
		m.log.Info("populated places",
			"strategy", o.strategy, "smt", o.smt, "places", len(m.pool.Places()))
	}
	return m, nil
}

func buildPlaces(ctx context.Context, o *options, cfg Config) ([]*Place, error) {
	masks, err := cfg.Masks()
	if err != nil {
		return nil, err
	}
	var places []*Place
	for _, mask := range masks {
		topo, err := o.enum.Enumerate(ctx, mask)
		if err != nil {
			return nil, err
		}
		group, err := CreatePlaces(topo, o.strategy, o.smt)
		if err != nil {
			return nil, err
		}
		o.log.V(1).Info("partitioned topology",
			"mask", mask.String(), "cpus", topo.Len(), "places", len(group))
		places = append(places, group...)
	}
	for i, a := range places {
		for _, b := range places[i+1:] {
			if a.Mask().IsOverlapping(b.Mask()) {
				o.log.Info("overlapping places", "place", a.String(), "other", b.String())
			}
		}
	}
	return places, nil
}

// Enabled reports whether launches get bound to places.
func (m *Manager) Enabled() bool { return m.enabled }

// Pool returns the pool this manager leases places from.
func (m *Manager) Pool() *Pool { return m.pool }

// Overlay leases the next available place and returns the environment
// overlay for a worker bound to it. It returns a nil overlay when binding is
// disabled, and fails with [ErrPlacesExhausted] when all places have been
// leased. The overlay carries a thread count only when the environment looked
// up by this manager lacks one; [Overlay.Environ] additionally keeps any
// thread count of the worker's own base environment.
func (m *Manager) Overlay() (Overlay, error) {
	if !m.enabled {
		return nil, nil
	}
	place, err := m.pool.Lease()
	if err != nil {
		m.log.Info("no place left to lease", "places", len(m.pool.Places()))
		return nil, err
	}
	m.log.V(1).Info("leased place", "place", place.String())
	overlay := Overlay{
		EnvPlaces:   place.String(),
		EnvProcBind: procBindStrict,
	}
	if _, ok := m.lookupEnv(EnvNumThreads); !ok {
		overlay[EnvNumThreads] = strconv.Itoa(place.Size())
	}
	return overlay, nil
}

// Run leases a place and calls launch with the environment overlay for the
// launched worker, returning whatever launch returns. When binding is
// disabled, launch is called with a nil overlay.
func Run[T any](m *Manager, launch func(env Overlay) (T, error)) (T, error) {
	overlay, err := m.Overlay()
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, "cannot bind worker")
	}
	return launch(overlay)
}
