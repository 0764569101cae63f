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
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Strategy determines how a topology gets carved into places.
type Strategy string

// Supported placement strategies.
const (
	// StrategyAll produces a single place spanning the whole topology.
	StrategyAll Strategy = "all"
	// StrategyCores produces one place per physical core.
	StrategyCores Strategy = "cores"
	// StrategyNodes produces one place per NUMA node.
	StrategyNodes Strategy = "nodes"
)

// ParseStrategy returns the Strategy for the given keyword, or an error
// wrapping [ErrUnsupportedStrategy].
func ParseStrategy(s string) (Strategy, error) {
	switch strategy := Strategy(s); strategy {
	case StrategyAll, StrategyCores, StrategyNodes:
		return strategy, nil
	}
	return "", errors.Wrapf(ErrUnsupportedStrategy, "strategy %q", s)
}

// Place is a set of CPUs to be handed out exclusively to a single worker.
type Place struct {
	mask   Set
	leased atomic.Bool
}

// NewPlace returns a new, available Place for the CPUs in mask.
func NewPlace(mask Set) *Place {
	return &Place{mask: mask}
}

// Mask returns the CPUs of this place.
func (p *Place) Mask() Set { return p.mask }

// Size returns the number of CPUs in this place.
func (p *Place) Size() int { return p.mask.Count() }

// Available reports whether this place has not been leased yet.
func (p *Place) Available() bool { return !p.leased.Load() }

// String returns the place in OpenMP place notation.
func (p *Place) String() string { return p.mask.Places() }

// lease marks this place as leased, returning false if it was leased
// already. A leased place never becomes available again.
func (p *Place) lease() bool { return p.leased.CompareAndSwap(false, true) }

// CreatePlaces partitions the topology into places according to the
// strategy. Unless smt is true, only the first CPU of each physical core is
// kept. Places for distinct cores or nodes are disjoint.
func CreatePlaces(topo *Topology, strategy Strategy, smt bool) ([]*Place, error) {
	var places []*Place
	add := func(descs []CPUDescriptor) {
		if mask := collapse(descs, smt); mask.Count() > 0 {
			places = append(places, NewPlace(mask))
		}
	}
	switch strategy {
	case StrategyAll:
		add(topo.CPUs())
	case StrategyCores:
		for _, core := range topo.Cores() {
			add(core)
		}
	case StrategyNodes:
		for _, node := range topo.Nodes() {
			add(node)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedStrategy, "strategy %q", strategy)
	}
	placesCreated.Add(float64(len(places)))
	return places, nil
}

// collapse returns the Set of CPUs in descs; without smt, a CPU is skipped
// when an already kept CPU shares its core.
func collapse(descs []CPUDescriptor, smt bool) Set {
	var mask Set
	kept := make([]CPUDescriptor, 0, len(descs))
next:
	for _, desc := range descs {
		if !smt {
			for _, k := range kept {
				if k.Core == desc.Core {
					continue next
				}
			}
		}
		kept = append(kept, desc)
		mask = mask.AddRange(desc.CPU, desc.CPU)
	}
	return mask
}
