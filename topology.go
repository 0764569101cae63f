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
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultProbeTimeout limits how long a single topology probe may take.
const DefaultProbeTimeout = 30 * time.Second

// CPUDescriptor describes a single logical CPU in terms of the physical core
// and NUMA node it belongs to.
type CPUDescriptor struct {
	CPU  uint
	Core int
	Node int
}

// Topology is a snapshot of the CPUs a process is allowed to use, grouped by
// CPU, physical core, and NUMA node. Groups and their members are kept in
// discovery order.
type Topology struct {
	cpus  []CPUDescriptor
	cores map[int][]CPUDescriptor
	nodes map[int][]CPUDescriptor
	// core and node ids in order of their first appearance.
	coreOrder []int
	nodeOrder []int
}

// NewTopology returns a new Topology for the CPU descriptors whose CPU is in
// the allowed Set.
func NewTopology(descs []CPUDescriptor, allowed Set) *Topology {
	t := &Topology{
		cores: map[int][]CPUDescriptor{},
		nodes: map[int][]CPUDescriptor{},
	}
	for _, desc := range descs {
		if !allowed.IsSet(desc.CPU) {
			continue
		}
		t.cpus = append(t.cpus, desc)
		if _, ok := t.cores[desc.Core]; !ok {
			t.coreOrder = append(t.coreOrder, desc.Core)
		}
		t.cores[desc.Core] = append(t.cores[desc.Core], desc)
		if _, ok := t.nodes[desc.Node]; !ok {
			t.nodeOrder = append(t.nodeOrder, desc.Node)
		}
		t.nodes[desc.Node] = append(t.nodes[desc.Node], desc)
	}
	return t
}

// Len returns the number of CPUs in this topology.
func (t *Topology) Len() int { return len(t.cpus) }

// CPUs returns all CPUs of this topology.
func (t *Topology) CPUs() []CPUDescriptor { return t.cpus }

// Cores returns the CPUs of this topology grouped by physical core.
func (t *Topology) Cores() [][]CPUDescriptor {
	return groups(t.cores, t.coreOrder)
}

// Nodes returns the CPUs of this topology grouped by NUMA node.
func (t *Topology) Nodes() [][]CPUDescriptor {
	return groups(t.nodes, t.nodeOrder)
}

// Core returns the CPUs sharing the specified physical core.
func (t *Topology) Core(id int) []CPUDescriptor { return t.cores[id] }

// Node returns the CPUs belonging to the specified NUMA node.
func (t *Topology) Node(id int) []CPUDescriptor { return t.nodes[id] }

func groups(m map[int][]CPUDescriptor, order []int) [][]CPUDescriptor {
	g := make([][]CPUDescriptor, 0, len(order))
	for _, id := range order {
		g = append(g, m[id])
	}
	return g
}

// Prober queries the host for its CPU topology, returning one descriptor per
// logical CPU.
type Prober interface {
	Probe(ctx context.Context) ([]CPUDescriptor, error)
}

// ProberFunc adapts an ordinary function into a [Prober].
type ProberFunc func(ctx context.Context) ([]CPUDescriptor, error)

// Probe calls f(ctx).
func (f ProberFunc) Probe(ctx context.Context) ([]CPUDescriptor, error) { return f(ctx) }

// Enumerator enumerates the CPU topology available to this process.
type Enumerator struct {
	// Prober to query the host topology with; defaults to [LscpuProber].
	Prober Prober
	// Affinity returns the CPUs this process is allowed to run on; defaults
	// to the affinity of the calling thread.
	Affinity func() (Set, error)
	// Timeout for a single probe; zero means [DefaultProbeTimeout], negative
	// means no timeout.
	Timeout time.Duration
}

// Enumerate returns the topology of the CPUs this process is allowed to use,
// further restricted to the CPUs in mask unless mask is nil. A failing or
// hanging probe fails with [ErrExternalTool].
func (e *Enumerator) Enumerate(ctx context.Context, mask Set) (*Topology, error) {
	affinity := e.Affinity
	if affinity == nil {
		affinity = func() (Set, error) { return Affinity(0) }
	}
	allowed, err := affinity()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine CPU affinity")
	}
	if mask != nil {
		allowed = allowed.Overlap(mask)
	}

	prober := e.Prober
	if prober == nil {
		prober = LscpuProber{}
	}
	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultProbeTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	descs, err := prober.Probe(ctx)
	if err != nil {
		probeFailures.Inc()
		return nil, probeError(err, "cannot probe CPU topology")
	}
	return NewTopology(descs, allowed), nil
}
