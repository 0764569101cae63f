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
	"testing/fstest"

	"github.com/cockroachdb/errors"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

var _ = Describe("sysfs probing", func() {

	It("probes a NUMA host with SMT", func(ctx context.Context) {
		fsys := fstest.MapFS{
			"sys/devices/system/cpu/online":                             file("0-3\n"),
			"sys/devices/system/cpu/cpu0/topology/thread_siblings_list": file("0,2\n"),
			"sys/devices/system/cpu/cpu1/topology/thread_siblings_list": file("1,3\n"),
			"sys/devices/system/cpu/cpu2/topology/thread_siblings_list": file("0,2\n"),
			"sys/devices/system/cpu/cpu3/topology/thread_siblings_list": file("1,3\n"),
			"sys/devices/system/node/node0/cpulist":                     file("0,2\n"),
			"sys/devices/system/node/node1/cpulist":                     file("1,3\n"),
			"sys/devices/system/node/possible":                          file("0-1\n"),
		}
		Expect(SysfsProber{FS: fsys}.Probe(ctx)).To(Equal([]CPUDescriptor{
			{CPU: 0, Core: 0, Node: 0},
			{CPU: 1, Core: 1, Node: 1},
			{CPU: 2, Core: 0, Node: 0},
			{CPU: 3, Core: 1, Node: 1},
		}))
	})

	It("puts all CPUs into node 0 without NUMA", func(ctx context.Context) {
		fsys := fstest.MapFS{
			"sys/devices/system/cpu/online":                             file("0-1"),
			"sys/devices/system/cpu/cpu0/topology/thread_siblings_list": file("0"),
			"sys/devices/system/cpu/cpu1/topology/thread_siblings_list": file("1"),
		}
		descs := Successful(SysfsProber{FS: fsys}.Probe(ctx))
		Expect(descs).To(HaveLen(2))
		for _, desc := range descs {
			Expect(desc.Node).To(BeZero())
			Expect(desc.Core).To(Equal(int(desc.CPU)))
		}
	})

	It("fails for incomplete sysfs information", func(ctx context.Context) {
		fsys := fstest.MapFS{
			"sys/devices/system/cpu/online": file("0-1"),
		}
		_, err := SysfsProber{FS: fsys}.Probe(ctx)
		Expect(errors.Is(err, ErrExternalTool)).To(BeTrue())

		_, err = SysfsProber{FS: fstest.MapFS{}}.Probe(ctx)
		Expect(errors.Is(err, ErrExternalTool)).To(BeTrue())
	})

	It("probes this host", func(ctx context.Context) {
		Expect(SysfsProber{}.Probe(ctx)).NotTo(BeEmpty())
	})

})
