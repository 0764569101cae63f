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
	"cmp"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// Pool is a sequence of places, ordered by descending place size, from which
// places get leased at most once.
//
// A Pool is populated at most once during its lifetime; afterwards its
// composition never changes and only the availability of individual places
// does. Normally, all managers of a process share the [DefaultPool].
type Pool struct {
	mu        sync.RWMutex
	populated bool
	places    []*Place
}

var defaultPool = NewPool()

// DefaultPool returns the process-wide pool.
func DefaultPool() *Pool { return defaultPool }

// NewPool returns a new, still unpopulated Pool.
func NewPool() *Pool {
	return &Pool{}
}

// Populated reports whether the pool has been populated.
func (p *Pool) Populated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.populated
}

// Populate populates the pool with the places returned by build, unless the
// pool is already populated, in which case build isn't called at all. The
// places are ordered by descending size, keeping places of equal size in the
// order build returned them. The pool keeps its own copy of the places
// slice. Populate reports whether it populated the pool.
// If build fails, the pool stays unpopulated.
func (p *Pool) Populate(build func() ([]*Place, error)) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.populated {
		return false, nil
	}
	places, err := build()
	if err != nil {
		return false, err
	}
	places = slices.Clone(places)
	slices.SortStableFunc(places, func(a, b *Place) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	p.places = places
	p.populated = true
	return true, nil
}

// Lease leases the first available place, in order of descending place size.
// It fails with [ErrPlacesExhausted] when no place is available anymore.
func (p *Pool) Lease() (*Place, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, place := range p.places {
		if place.lease() {
			leases.Inc()
			return place, nil
		}
	}
	leasesExhausted.Inc()
	return nil, errors.Wrapf(ErrPlacesExhausted, "all %d places leased", len(p.places))
}

// Places returns the places of this pool in lease order.
func (p *Pool) Places() []*Place {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.places)
}

// Available returns the number of places not leased yet.
func (p *Pool) Available() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, place := range p.places {
		if place.Available() {
			n++
		}
	}
	return n
}
