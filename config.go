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
	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
)

// Environment variables consumed and produced.
const (
	// EnvBind selects the CPUs to bind workers to: when unset, all CPUs the
	// process is allowed to use; [NoBind] disables binding altogether;
	// otherwise “|”-separated mask specifications.
	EnvBind = "VLLM_CPU_OMP_THREADS_BIND"
	// NoBind disables binding when set as the value of [EnvBind].
	NoBind = "nobind"

	EnvPlaces     = "OMP_PLACES"
	EnvNumThreads = "OMP_NUM_THREADS"
	EnvProcBind   = "OMP_PROC_BIND"

	procBindStrict = "TRUE"
)

// Config is the environment configuration of a [Manager].
type Config struct {
	// Bind is nil when the bind specification is absent.
	Bind *string `envconfig:"VLLM_CPU_OMP_THREADS_BIND"`
}

// ConfigFromEnv returns the Config from the process environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid environment configuration")
	}
	return cfg, nil
}

// Enabled reports whether binding is enabled.
func (c Config) Enabled() bool {
	return c.Bind == nil || *c.Bind != NoBind
}

// Masks returns the CPU masks to enumerate the topology for. Without a bind
// specification, this is a single nil mask, meaning all allowed CPUs.
func (c Config) Masks() ([]Set, error) {
	if c.Bind == nil {
		return []Set{nil}, nil
	}
	masks, err := ParseBindSpec(*c.Bind)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvBind)
	}
	return masks, nil
}
