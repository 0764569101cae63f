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
	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("cpu lists", func() {

	DescribeTable("generating textual representations",
		func(list List, expected string) {
			Expect(list.String()).To(Equal(expected))
		},
		Entry(nil, List{}, ""),
		Entry(nil, List{{1, 1}, {2, 42}, {666, 666}}, "1,2-42,666"),
		Entry(nil, List{{2, 42}, {777, 778}}, "2-42,777-778"),
	)

	When("parsing lists from text", func() {

		It("returns nothing from nothing", func() {
			Expect(NewList([]byte(""))).To(Equal(List{}))
		})

		It("returns single CPUs and ranges", func() {
			Expect(NewList([]byte("42"))).To(Equal(List{{42, 42}}))
			Expect(NewList([]byte("42-666"))).To(Equal(List{{42, 666}}))
			Expect(NewList([]byte("1-42,666,1000-1001"))).To(
				Equal(List{{1, 42}, {666, 666}, {1000, 1001}}))
		})

		DescribeTable("rejecting malformed tokens",
			func(s string) {
				Expect(NewList([]byte(s))).Error().To(MatchError(ErrInvalidToken))
			},
			Entry(nil, "abc"),
			Entry(nil, "0abc"),
			Entry(nil, "1-z"),
			Entry(nil, "0-0abc"),
		)

		It("rejects reversed ranges", func() {
			Expect(NewList([]byte("1,3-0"))).Error().To(MatchError(ErrInvalidRange))
		})

	})

	It("converts a list into a set", func() {
		Expect(List{}.Set().String()).To(BeEmpty())
		Expect(Successful(NewList([]byte("3,5,666"))).Set().String()).To(Equal("3,5,666"))
	})

	It("returns the first CPU", func() {
		cpu, ok := List{{4, 5}, {8, 8}}.First()
		Expect(ok).To(BeTrue())
		Expect(cpu).To(Equal(uint(4)))
		_, ok = List{}.First()
		Expect(ok).To(BeFalse())
	})

})
