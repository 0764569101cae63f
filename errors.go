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

import "github.com/cockroachdb/errors"

// Errors returned by this package. They are never caught or retried
// internally; test for them using [errors.Is].
var (
	// ErrInvalidRange reports a CPU range whose start lies beyond its end.
	ErrInvalidRange = errors.New("invalid CPU range")
	// ErrInvalidToken reports a CPU list token that is neither a range nor a
	// CPU number.
	ErrInvalidToken = errors.New("invalid CPU list token")
	// ErrExternalTool reports a topology probe that failed to run, timed out,
	// or produced output that could not be parsed.
	ErrExternalTool = errors.New("topology probe failed")
	// ErrUnsupportedStrategy reports an unknown place partitioning strategy.
	ErrUnsupportedStrategy = errors.New("unsupported placement strategy")
	// ErrPlacesExhausted reports a lease request while all places have
	// already been leased.
	ErrPlacesExhausted = errors.New("out of OMP places")
)

// probeError marks err as a topology probe failure, unless it already is one.
func probeError(err error, format string, args ...any) error {
	err = errors.Wrapf(err, format, args...)
	if errors.Is(err, ErrExternalTool) {
		return err
	}
	return errors.Mark(err, ErrExternalTool)
}
