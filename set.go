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
	"math/bits"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set is a CPU bit string, such as used for CPU affinity masks. See also
// [sched_getaffinity(2)].
//
// [sched_getaffinity(2)]: https://man7.org/linux/man-pages/man2/sched_getaffinity.2.html
type Set []uint64

// setsize reflects the dynamically determined size of CPU sets on this system
// (size in uint64 words), as discovered by [Affinity].
var setsize atomic.Uint64
var wordbytesize = uint64(unsafe.Sizeof(Set{0}[0]))
var bitsperword = uint(wordbytesize * 8)

func init() {
	setsize.Store(1)
}

func setBitIndex(cpu uint) int {
	return int(cpu / bitsperword)
}

func setBitMask(cpu uint) uint64 {
	return uint64(1) << (cpu % bitsperword)
}

// NewSet returns a Set containing the specified CPUs.
func NewSet(cpus ...uint) Set {
	var s Set
	for _, cpu := range cpus {
		s = s.AddRange(cpu, cpu)
	}
	return s
}

// IsSet reports whether cpu is in this CPU set.
func (s Set) IsSet(cpu uint) bool {
	if cpu >= uint(len(s))*bitsperword {
		return false
	}
	return s[setBitIndex(cpu)]&setBitMask(cpu) != 0
}

// AddRange adds the CPUs from the specified range, returning an updated Set.
// This updated Set may or may not be the original Set. AddRange panics if from
// lies beyond to.
func (s Set) AddRange(from, to uint) Set {
	if from > to {
		panic(fmt.Sprintf("invalid range %d-%d", from, to))
	}
	if to >= uint(len(s))*bitsperword {
		s = slices.Grow(s, setBitIndex(to)-len(s)+1)
		s = s[:cap(s)]
	}
	for cpu := from; cpu <= to; cpu++ {
		s[setBitIndex(cpu)] |= setBitMask(cpu)
	}
	return s
}

// Count returns the number of CPUs in this set.
func (s Set) Count() int {
	n := 0
	for _, word := range s {
		n += bits.OnesCount64(word)
	}
	return n
}

// CPUs returns the CPU numbers in this set in ascending order.
func (s Set) CPUs() []uint {
	cpus := make([]uint, 0, s.Count())
	for idx, word := range s {
		for word != 0 {
			bit := uint(bits.TrailingZeros64(word))
			cpus = append(cpus, uint(idx)*bitsperword+bit)
			word &= word - 1
		}
	}
	return cpus
}

// IsOverlapping returns true if this Set shares at least one CPU with another
// Set.
func (s Set) IsOverlapping(another Set) bool {
	for idx := range min(len(s), len(another)) {
		if s[idx]&another[idx] != 0 {
			return true
		}
	}
	return false
}

// Overlap returns the CPUs present in both this Set and another Set as a new
// Set.
func (s Set) Overlap(another Set) Set {
	overlap := make(Set, min(len(s), len(another)))
	for idx := range overlap {
		overlap[idx] = s[idx] & another[idx]
	}
	return overlap
}

// Affinity returns the affinity CPU Set of the task with the passed TID.
// Otherwise, it returns an error. If tid is zero, then the affinity Set of the
// calling thread is returned.
//
// We don't use [unix.SchedGetaffinity] as this is tied to the fixed size
// [unix.CPUSet] type; instead, we dynamically figure out the size needed and
// cache the size internally.
func Affinity(tid int) (Set, error) {
	var set Set

	setlenStart := setsize.Load()
	setlen := setlenStart
	for {
		set = make([]uint64, setlen)
		// SYS_SCHED_GETAFFINITY does not block, so RawSyscall suffices.
		_, _, e := unix.RawSyscall(unix.SYS_SCHED_GETAFFINITY,
			uintptr(tid), uintptr(setlen*wordbytesize), uintptr(unsafe.Pointer(&set[0])))
		if e != 0 {
			if e == unix.EINVAL {
				setlen *= 2
				continue
			}
			return nil, e
		}
		// Publish the new size, unless another go routine already published a
		// larger one in the meantime.
		for !setsize.CompareAndSwap(setlenStart, setlen) {
			setlenStart = setsize.Load()
			if setlenStart > setlen {
				break
			}
		}
		return set, nil
	}
}

// String returns the CPUs in this set in textual list format, such as
// “0-3,7”.
func (s Set) String() string {
	return s.List().String()
}

// List returns the list of CPU ranges corresponding with this CPU Set.
func (s Set) List() List {
	l := List{}
	for _, cpu := range s.CPUs() {
		if n := len(l); n > 0 && l[n-1][1]+1 == cpu {
			l[n-1][1] = cpu
			continue
		}
		l = append(l, [2]uint{cpu, cpu})
	}
	return l
}

// Places returns the CPUs of this set in OpenMP place notation, such as
// “{0,1,2,3}”, suitable for the OMP_PLACES environment variable.
func (s Set) Places() string {
	var b strings.Builder
	b.WriteByte('{')
	for idx, cpu := range s.CPUs() {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(cpu), 10))
	}
	b.WriteByte('}')
	return b.String()
}
