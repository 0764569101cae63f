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

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

// smtHost is a single node host with two physical cores of two SMT threads
// each.
var smtHost = []CPUDescriptor{
	{CPU: 0, Core: 0, Node: 0},
	{CPU: 1, Core: 1, Node: 0},
	{CPU: 2, Core: 0, Node: 0},
	{CPU: 3, Core: 1, Node: 0},
}

func fixedProber(descs []CPUDescriptor) Prober {
	return ProberFunc(func(context.Context) ([]CPUDescriptor, error) { return descs, nil })
}

func fixedAffinity(cpus ...uint) func() (Set, error) {
	return func() (Set, error) { return NewSet(cpus...), nil }
}

func cpusOf(descs []CPUDescriptor) []uint {
	cpus := make([]uint, 0, len(descs))
	for _, desc := range descs {
		cpus = append(cpus, desc.CPU)
	}
	return cpus
}

var _ = Describe("topology", func() {

	It("groups CPUs by core and node in discovery order", func() {
		topo := NewTopology([]CPUDescriptor{
			{CPU: 4, Core: 2, Node: 1},
			{CPU: 0, Core: 0, Node: 0},
			{CPU: 5, Core: 2, Node: 1},
			{CPU: 1, Core: 0, Node: 0},
		}, NewSet(0, 1, 4, 5))
		Expect(topo.Len()).To(Equal(4))
		Expect(cpusOf(topo.CPUs())).To(Equal([]uint{4, 0, 5, 1}))
		Expect(topo.Cores()).To(HaveLen(2))
		Expect(cpusOf(topo.Cores()[0])).To(Equal([]uint{4, 5}))
		Expect(cpusOf(topo.Core(0))).To(Equal([]uint{0, 1}))
		Expect(cpusOf(topo.Nodes()[1])).To(Equal([]uint{0, 1}))
		Expect(cpusOf(topo.Node(1))).To(Equal([]uint{4, 5}))
	})

	It("enumerates only allowed CPUs within the mask", func(ctx context.Context) {
		e := Enumerator{Prober: fixedProber(smtHost), Affinity: fixedAffinity(0, 1, 2, 3)}
		topo := Successful(e.Enumerate(ctx, NewSet(1, 2)))
		Expect(cpusOf(topo.CPUs())).To(Equal([]uint{1, 2}))

		topo = Successful(e.Enumerate(ctx, nil))
		Expect(topo.Len()).To(Equal(4))

		e.Affinity = fixedAffinity(2, 3)
		topo = Successful(e.Enumerate(ctx, NewSet(1, 2)))
		Expect(cpusOf(topo.CPUs())).To(Equal([]uint{2}))
	})

	It("enumerates this process's CPUs", func(ctx context.Context) {
		allowed := Successful(Affinity(0))
		e := Enumerator{Prober: SysfsProber{}}
		topo := Successful(e.Enumerate(ctx, nil))
		Expect(topo.Len()).To(BeNumerically(">", 0))
		for _, desc := range topo.CPUs() {
			Expect(allowed.IsSet(desc.CPU)).To(BeTrue())
		}
	})

	It("fails for failing probes", func(ctx context.Context) {
		e := Enumerator{
			Prober: ProberFunc(func(context.Context) ([]CPUDescriptor, error) {
				return nil, errors.New("on fire")
			}),
			Affinity: fixedAffinity(0),
		}
		_, err := e.Enumerate(ctx, nil)
		Expect(errors.Is(err, ErrExternalTool)).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("on fire")))
	})

	It("fails for hanging probes", func(ctx context.Context) {
		e := Enumerator{
			Prober: ProberFunc(func(ctx context.Context) ([]CPUDescriptor, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			Affinity: fixedAffinity(0),
			Timeout:  50 * time.Millisecond,
		}
		_, err := e.Enumerate(ctx, nil)
		Expect(errors.Is(err, ErrExternalTool)).To(BeTrue())
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})

	It("fails when the affinity is unknown", func(ctx context.Context) {
		e := Enumerator{
			Prober:   fixedProber(smtHost),
			Affinity: func() (Set, error) { return nil, errors.New("no affinity") },
		}
		Expect(e.Enumerate(ctx, nil)).Error().To(MatchError(ContainSubstring("no affinity")))
	})

})
