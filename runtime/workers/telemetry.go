package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"blind-relay/contract"

	"github.com/shirou/gopsutil/process"
)

// RelayTelemetryWorker periodically logs the relay's own resource usage and
// registry gauges for operators. It is observability for the log stream
// only, never a metrics export surface, and it reads the registry through
// the same serialized interface as everyone else.
type RelayTelemetryWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewRelayTelemetryWorker(log *slog.Logger, registry contract.IRegistry,
	interval time.Duration) *RelayTelemetryWorker {
	return &RelayTelemetryWorker{log: log, registry: registry, interval: interval}
}

func (w *RelayTelemetryWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping relay telemetry")
			return nil
		case <-ticker.C:
			connections, registered := w.registry.Stats()

			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Debug("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Debug("Error while finding process ram usage", "err", err)
				continue
			}

			w.log.Info("Relay telemetry",
				"connections", connections,
				"registered", registered,
				"cpu_percent", cpu,
				"ram_percent", ram)
		}
	}
}
