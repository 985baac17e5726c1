// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signald

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type clientMetrics struct {
	envelopesTotal  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	reconnectsTotal prometheus.Counter
}

func (c *Client) initMetrics() {
	promautoFactory := promauto.With(c.config.PromRegistry)
	c.metrics = &clientMetrics{
		envelopesTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crier_gateway_envelopes_total",
				Help: "inbound envelopes by type",
			},
			[]string{"type"},
		),
		requestsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crier_gateway_requests_total",
				Help: "outbound requests by type",
			},
			[]string{"type"},
		),
		reconnectsTotal: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "crier_gateway_reconnects_total",
				Help: "successful daemon reconnects",
			},
		),
	}
}
