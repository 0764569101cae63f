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
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

// LscpuProber probes the host CPU topology by running “lscpu -J -e” and
// decoding its JSON output.
type LscpuProber struct {
	// Path of the lscpu binary; defaults to “lscpu”, as found in PATH.
	Path string
}

// Probe runs lscpu and returns the descriptors of all online CPUs.
func (p LscpuProber) Probe(ctx context.Context) ([]CPUDescriptor, error) {
	path := p.Path
	if path == "" {
		path = "lscpu"
	}
	out, err := exec.CommandContext(ctx, path, "-J", "-e").Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, probeError(ctx.Err(), "%s did not finish", path)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, probeError(err, "%s failed: %s",
				path, bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, probeError(err, "cannot run %s", path)
	}
	return parseLscpu(out)
}

// lscpuRecord is a single CPU row of lscpu's extended JSON output. Depending
// on the util-linux version, lscpu renders values either as JSON numbers and
// booleans, or as strings.
type lscpuRecord struct {
	CPU    lscpuNumber `json:"cpu"`
	Core   lscpuNumber `json:"core"`
	Node   lscpuNumber `json:"node"`
	Online *lscpuBool  `json:"online"`
}

type lscpuNumber struct {
	value int
	valid bool
}

func (n *lscpuNumber) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*n = lscpuNumber{}
	case float64:
		if v < 0 || v != float64(int(v)) {
			return errors.Newf("invalid number %v", v)
		}
		*n = lscpuNumber{value: int(v), valid: true}
	case string:
		if v == "" || v == "-" {
			*n = lscpuNumber{}
			return nil
		}
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			return errors.Newf("invalid number %q", v)
		}
		*n = lscpuNumber{value: i, valid: true}
	default:
		return errors.Newf("unexpected value %s", b)
	}
	return nil
}

type lscpuBool bool

func (o *lscpuBool) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*o = lscpuBool(v)
	case string:
		switch strings.ToLower(v) {
		case "yes", "y", "true":
			*o = true
		case "no", "n", "false":
			*o = false
		default:
			return errors.Newf("invalid online state %q", v)
		}
	default:
		return errors.Newf("unexpected online state %s", b)
	}
	return nil
}

// parseLscpu decodes the JSON output of “lscpu -J -e”. Offline CPUs are
// skipped, and CPUs without NUMA node information are considered to belong to
// node 0.
func parseLscpu(out []byte) ([]CPUDescriptor, error) {
	var doc struct {
		CPUs []lscpuRecord `json:"cpus"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, probeError(err, "malformed lscpu output")
	}
	if len(doc.CPUs) == 0 {
		return nil, probeError(errors.New("no CPU records"), "malformed lscpu output")
	}
	descs := make([]CPUDescriptor, 0, len(doc.CPUs))
	for idx, rec := range doc.CPUs {
		if rec.Online != nil && !*rec.Online {
			continue
		}
		if !rec.CPU.valid || !rec.Core.valid {
			return nil, probeError(errors.Newf("record #%d lacks cpu or core", idx),
				"malformed lscpu output")
		}
		descs = append(descs, CPUDescriptor{
			CPU:  uint(rec.CPU.value),
			Core: rec.Core.value,
			Node: rec.Node.value,
		})
	}
	return descs, nil
}
