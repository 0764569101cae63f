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
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/thediveo/faf"
)

// MaxCPU is the upper limit (exclusive) for CPU numbers in lists, well beyond
// the kernel's NR_CPUS.
const MaxCPU = 1 << 22

// List is a list of CPU [from...to] ranges, as found in sysfs “cpulist” files
// and in bind specifications. CPU numbers are starting from zero.
type List [][2]uint

// String returns the CPU list in textual format, with the individual ranges
// “x-y” separated by “,” and single CPU ranges collapsed into “x” (instead of
// “x-x”).
func (l List) String() string {
	var b strings.Builder
	for idx, cpurange := range l {
		if idx > 0 {
			b.WriteByte(',')
		}
		if cpurange[0] == cpurange[1] {
			fmt.Fprintf(&b, "%d", cpurange[0])
			continue
		}
		fmt.Fprintf(&b, "%d-%d", cpurange[0], cpurange[1])
	}
	return b.String()
}

// NewList returns a new CPU List for the given textual list format, such as
// “0-3,7”. Malformed text and CPU numbers from [MaxCPU] on fail with
// [ErrInvalidToken], while a range with its start beyond its end fails with
// [ErrInvalidRange].
func NewList(b []byte) (List, error) {
	bs := faf.NewBytestring(b)
	l := List{}
	for {
		if bs.EOL() {
			return l, nil
		}
		from, ok := bs.Uint64()
		if !ok {
			return nil, errors.Wrap(ErrInvalidToken, "expected unsigned integer number")
		}
		if from >= MaxCPU {
			return nil, errors.Wrapf(ErrInvalidToken, "CPU %d out of range", from)
		}
		if bs.EOL() {
			return append(l, [2]uint{uint(from), uint(from)}), nil
		}
		switch ch, _ := bs.Next(); ch {
		case '-':
			to, ok := bs.Uint64()
			if !ok {
				return nil, errors.Wrap(ErrInvalidToken, "expected unsigned integer number")
			}
			if to >= MaxCPU {
				return nil, errors.Wrapf(ErrInvalidToken, "CPU %d out of range", to)
			}
			if from > to {
				return nil, errors.Wrapf(ErrInvalidRange, "range %d-%d", from, to)
			}
			l = append(l, [2]uint{uint(from), uint(to)})
			if bs.EOL() {
				return l, nil
			}
			if ch, _ = bs.Next(); ch != ',' {
				return nil, errors.Wrap(ErrInvalidToken, "expected ','")
			}
		case ',':
			l = append(l, [2]uint{uint(from), uint(from)})
		default:
			return nil, errors.Wrap(ErrInvalidToken, "expected '-' or ','")
		}
	}
}

// Set returns the CPU Set corresponding with this list.
func (l List) Set() Set {
	if len(l) == 0 {
		return Set{}
	}
	// Do last range first to allocate only once.
	var s Set
	for i := range l {
		r := l[len(l)-i-1]
		s = s.AddRange(r[0], r[1])
	}
	return s
}

// First returns the lowest CPU in this List, or false if the List is empty.
// The List must be in canonical form, as the kernel hands it out.
func (l List) First() (uint, bool) {
	if len(l) == 0 {
		return 0, false
	}
	return l[0][0], true
}
