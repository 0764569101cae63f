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
	"os/exec"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

var _ = Describe("environment overlays", func() {

	It("merges into a base environment", func() {
		o := Overlay{"B": "2", "A": "1"}
		Expect(o.Environ([]string{"B=old", "C=3", "BB=4"})).To(Equal(
			[]string{"C=3", "BB=4", "A=1", "B=2"}))
		Expect(Overlay(nil).Environ([]string{"C=3"})).To(Equal([]string{"C=3"}))
	})

	It("applies to commands", func() {
		cmd := exec.Command("true")
		Overlay(nil).Apply(cmd)
		Expect(cmd.Env).To(BeNil())

		Overlay{EnvPlaces: "{1}"}.Apply(cmd)
		Expect(cmd.Env).To(ContainElement("OMP_PLACES={1}"))
		Expect(len(cmd.Env)).To(BeNumerically(">=", len(os.Environ())-1))

		cmd.Env = []string{"FOO=bar"}
		Overlay{EnvPlaces: "{2}"}.Apply(cmd)
		Expect(cmd.Env).To(Equal([]string{"FOO=bar", "OMP_PLACES={2}"}))
	})

	It("never overrides a thread count set in the command's environment", func() {
		cmd := exec.Command("true")
		cmd.Env = []string{"OMP_NUM_THREADS=3", "FOO=bar"}
		Overlay{EnvPlaces: "{0,1}", EnvNumThreads: "2", EnvProcBind: "TRUE"}.Apply(cmd)
		Expect(cmd.Env).To(Equal([]string{
			"OMP_NUM_THREADS=3", "FOO=bar", "OMP_PLACES={0,1}", "OMP_PROC_BIND=TRUE"}))
	})

})
