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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	placesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ompplaces_places_created_total",
		Help: "Total number of places created from CPU topologies",
	})

	leases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ompplaces_leases_total",
		Help: "Total number of places leased to workers",
	})

	leasesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ompplaces_leases_exhausted_total",
		Help: "Total number of lease requests failing for lack of available places",
	})

	probeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ompplaces_probe_failures_total",
		Help: "Total number of failed CPU topology probes",
	})
)
