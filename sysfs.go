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
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

const (
	sysCPUDir  = "sys/devices/system/cpu"
	sysNodeDir = "sys/devices/system/node"
)

// SysfsProber probes the host CPU topology from sysfs instead of relying on
// an external tool. The physical core of a CPU is identified by the lowest CPU
// number among its thread siblings.
type SysfsProber struct {
	// FS rooted at “/”; defaults to the host's root file system.
	FS fs.FS
}

// Probe returns the descriptors of all online CPUs.
func (p SysfsProber) Probe(ctx context.Context) ([]CPUDescriptor, error) {
	fsys := p.FS
	if fsys == nil {
		fsys = os.DirFS("/")
	}
	online, err := readList(fsys, path.Join(sysCPUDir, "online"))
	if err != nil {
		return nil, probeError(err, "cannot determine online CPUs")
	}
	nodeOf, err := cpuNodes(fsys)
	if err != nil {
		return nil, probeError(err, "cannot determine NUMA nodes")
	}
	cpus := online.Set().CPUs()
	descs := make([]CPUDescriptor, 0, len(cpus))
	for _, cpu := range cpus {
		if err := ctx.Err(); err != nil {
			return nil, probeError(err, "sysfs probe aborted")
		}
		siblings, err := readList(fsys, path.Join(sysCPUDir,
			fmt.Sprintf("cpu%d/topology/thread_siblings_list", cpu)))
		if err != nil {
			return nil, probeError(err, "cannot determine core of CPU %d", cpu)
		}
		core, ok := siblings.First()
		if !ok {
			core = cpu
		}
		descs = append(descs, CPUDescriptor{CPU: cpu, Core: int(core), Node: nodeOf[cpu]})
	}
	return descs, nil
}

// cpuNodes maps CPUs to their NUMA nodes. Hosts without NUMA support lack the
// node directory, rendering all CPUs part of node 0.
func cpuNodes(fsys fs.FS) (map[uint]int, error) {
	nodeOf := map[uint]int{}
	nodeDirs, err := fs.Glob(fsys, path.Join(sysNodeDir, "node*"))
	if err != nil {
		return nil, err
	}
	for _, nodeDir := range nodeDirs {
		node, err := strconv.Atoi(strings.TrimPrefix(path.Base(nodeDir), "node"))
		if err != nil {
			continue // e.g. "node_online" helpers, not a node.
		}
		cpulist, err := readList(fsys, path.Join(nodeDir, "cpulist"))
		if err != nil {
			return nil, err
		}
		for _, cpu := range cpulist.Set().CPUs() {
			nodeOf[cpu] = node
		}
	}
	return nodeOf, nil
}

func readList(fsys fs.FS, name string) (List, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return NewList(bytes.TrimSpace(b))
}
