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

package main

import (
	"fmt"
	"log"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/thediveo/ompplaces"
	"golang.org/x/sync/errgroup"
)

type rootFlags struct {
	strategy  string
	smt       bool
	probe     string
	timeout   time.Duration
	verbosity int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "ompplaces",
		Short:        "bind OpenMP workers to disjoint CPU places",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.strategy, "strategy", string(ompplaces.StrategyNodes),
		"placement strategy: all, cores, or nodes")
	pf.BoolVar(&flags.smt, "smt", false, "include all SMT siblings of cores in places")
	pf.StringVar(&flags.probe, "probe", "lscpu", "topology probe: lscpu or sysfs")
	pf.DurationVar(&flags.timeout, "probe-timeout", ompplaces.DefaultProbeTimeout,
		"maximum duration of a topology probe")
	pf.IntVarP(&flags.verbosity, "verbose", "v", 0, "log verbosity")

	root.AddCommand(newPlacesCmd(flags), newExecCmd(flags))
	return root
}

// manager returns a new Manager as configured by the command line flags and
// the process environment.
func (f *rootFlags) manager(cmd *cobra.Command) (*ompplaces.Manager, error) {
	strategy, err := ompplaces.ParseStrategy(f.strategy)
	if err != nil {
		return nil, err
	}
	var prober ompplaces.Prober
	switch f.probe {
	case "lscpu":
		prober = ompplaces.LscpuProber{}
	case "sysfs":
		prober = ompplaces.SysfsProber{}
	default:
		return nil, errors.Newf("unknown topology probe %q", f.probe)
	}
	stdr.SetVerbosity(f.verbosity)
	return ompplaces.NewManager(cmd.Context(),
		ompplaces.WithStrategy(strategy),
		ompplaces.WithSMT(f.smt),
		ompplaces.WithProber(prober),
		ompplaces.WithProbeTimeout(f.timeout),
		ompplaces.WithLogger(stdr.New(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))),
		ompplaces.WithPool(ompplaces.NewPool()))
}

func newPlacesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "places",
		Short: "show the places in lease order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := flags.manager(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !m.Enabled() {
				fmt.Fprintf(out, "binding disabled by %s=%s\n", ompplaces.EnvBind, ompplaces.NoBind)
				return nil
			}
			for idx, place := range m.Pool().Places() {
				fmt.Fprintf(out, "#%d %s (%d CPUs)\n", idx, place, place.Size())
			}
			return nil
		},
	}
}

func newExecCmd(flags *rootFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "exec [flags] -- COMMAND [ARG...]",
		Short: "launch workers bound to places, waiting for all of them to finish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := flags.manager(cmd)
			if err != nil {
				return err
			}
			var g errgroup.Group
			for range workers {
				worker, err := ompplaces.Run(m, func(env ompplaces.Overlay) (*exec.Cmd, error) {
					worker := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
					worker.Stdout = cmd.OutOrStdout()
					worker.Stderr = cmd.ErrOrStderr()
					env.Apply(worker)
					return worker, worker.Start()
				})
				if err != nil {
					_ = g.Wait()
					return err
				}
				g.Go(worker.Wait)
			}
			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "n", 1, "number of workers to launch")
	return cmd
}
