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

package messenger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type messengerMetrics struct {
	sendsTotal *prometheus.CounterVec
}

func (m *Messenger) initMetrics() {
	promautoFactory := promauto.With(m.config.PromRegistry)
	m.metrics = &messengerMetrics{
		sendsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crier_sends_total",
				Help: "outbound sends by kind and result",
			},
			[]string{"kind", "result"},
		),
	}
}
