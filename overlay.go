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
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Overlay is a set of environment variables to be merged into the
// environment of a single launched worker, leaving the environment of this
// process untouched.
type Overlay map[string]string

// Environ returns the base environment in “key=value” form with the overlay
// merged in; overlay variables replace variables of the same name in base,
// except for a thread count already set in base, which always wins.
func (o Overlay) Environ(base []string) []string {
	env := make([]string, 0, len(base)+len(o))
	keep := map[string]bool{}
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if key == EnvNumThreads {
			keep[key] = true
		} else if _, ok := o[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range slices.Sorted(maps.Keys(o)) {
		if keep[key] {
			continue
		}
		env = append(env, key+"="+o[key])
	}
	return env
}

// Apply merges the overlay into the environment of cmd, starting from the
// environment of this process if cmd has no explicit environment yet. An
// empty overlay leaves cmd unchanged.
func (o Overlay) Apply(cmd *exec.Cmd) {
	if len(o) == 0 {
		return
	}
	base := cmd.Env
	if base == nil {
		base = os.Environ()
	}
	cmd.Env = o.Environ(base)
}
