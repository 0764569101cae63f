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
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseMask returns the Set of CPUs described by a textual mask specification,
// consisting of “,”-separated tokens in the form of either “start-finish”
// (inclusive) or a single CPU number; for instance, “0-3,7”. Ranges with
// start beyond finish fail with [ErrInvalidRange]; any other token, including
// an empty one, fails with [ErrInvalidToken].
func ParseMask(spec string) (Set, error) {
	var mask Set
	for _, token := range strings.Split(strings.TrimSpace(spec), ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, errors.Wrapf(ErrInvalidToken, "empty token in mask %q", spec)
		}
		l, err := NewList([]byte(token))
		if err != nil {
			return nil, errors.Wrapf(err, "token %q of mask %q", token, spec)
		}
		for _, r := range l {
			mask = mask.AddRange(r[0], r[1])
		}
	}
	return mask, nil
}

// ParseBindSpec splits a bind specification into its “|”-separated mask
// alternatives, such as “0-7,16-23|8-15,24-31”, and returns the parsed Set of
// each alternative in the order given.
func ParseBindSpec(spec string) ([]Set, error) {
	alternatives := strings.Split(spec, "|")
	masks := make([]Set, 0, len(alternatives))
	for _, alternative := range alternatives {
		mask, err := ParseMask(alternative)
		if err != nil {
			return nil, err
		}
		masks = append(masks, mask)
	}
	return masks, nil
}
