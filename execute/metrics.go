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

package execute

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type executorMetrics struct {
	commandsTotal *prometheus.CounterVec
}

func (e *Executor) initMetrics() {
	promautoFactory := promauto.With(e.config.PromRegistry)
	e.metrics = &executorMetrics{
		commandsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crier_commands_total",
				Help: "commands executed by command and status",
			},
			[]string{"command", "status"},
		),
	}
}
