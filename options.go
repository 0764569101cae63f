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
	"os"
	"time"

	"github.com/go-logr/logr"
)

// Option configures a [Manager].
type Option func(*options)

type options struct {
	strategy  Strategy
	smt       bool
	pool      *Pool
	enum      Enumerator
	log       logr.Logger
	lookupEnv func(string) (string, bool)
	config    *Config
}

func defaultOptions() options {
	return options{
		strategy:  StrategyNodes,
		pool:      DefaultPool(),
		log:       logr.Discard(),
		lookupEnv: os.LookupEnv,
	}
}

// WithStrategy sets the placement strategy; defaults to [StrategyNodes].
func WithStrategy(strategy Strategy) Option {
	return func(o *options) { o.strategy = strategy }
}

// WithSMT keeps all SMT siblings of a core in places, instead of only the
// first CPU of each core.
func WithSMT(smt bool) Option {
	return func(o *options) { o.smt = smt }
}

// WithPool uses the specified pool instead of the [DefaultPool].
func WithPool(pool *Pool) Option {
	return func(o *options) { o.pool = pool }
}

// WithProber probes the CPU topology using the specified prober instead of
// [LscpuProber].
func WithProber(prober Prober) Option {
	return func(o *options) { o.enum.Prober = prober }
}

// WithProbeTimeout limits the duration of a single topology probe; negative
// durations disable the timeout.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *options) { o.enum.Timeout = timeout }
}

// WithAffinity determines the CPUs this process is allowed to use via the
// specified function instead of sched_getaffinity(2).
func WithAffinity(affinity func() (Set, error)) Option {
	return func(o *options) { o.enum.Affinity = affinity }
}

// WithLogger logs to the specified logger.
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithLookupEnv looks up the environment that launched workers inherit using
// the specified function instead of [os.LookupEnv].
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(o *options) { o.lookupEnv = lookup }
}

// WithConfig uses the specified configuration instead of reading it from the
// process environment.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = &cfg }
}
