// Package metrics holds the Prometheus instruments for calcshell.
//
// The calculator has no HTTP endpoint, so the metrics live in a private registry that the
// session writes out in the text exposition format on exit when a metrics file is configured
// (suitable for the node_exporter textfile collector).
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry every calcshell instrument is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// CommandsTotal counts dispatched commands.
	// Labels: command (registered name or "unknown"), status (ok, error)
	CommandsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calcshell",
		Subsystem: "session",
		Name:      "commands_total",
		Help:      "Commands dispatched by the session, by command and status",
	}, []string{"command", "status"})

	// CommandErrorsTotal counts failed commands by error kind.
	// Labels: kind (unknown_command, invalid_operand, invalid_input, division_by_zero,
	// not_found, format, write, internal)
	CommandErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calcshell",
		Subsystem: "session",
		Name:      "command_errors_total",
		Help:      "Failed commands by error kind",
	}, []string{"kind"})

	// HistoryWritesTotal counts writes to history files.
	// Labels: op (append, rewrite, save_as, delete), status (ok, error)
	HistoryWritesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calcshell",
		Subsystem: "ledger",
		Name:      "writes_total",
		Help:      "History file writes by operation and status",
	}, []string{"op", "status"})

	// HistoryRecords tracks the number of calculations held in memory.
	HistoryRecords = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "calcshell",
		Subsystem: "ledger",
		Name:      "records",
		Help:      "Calculations currently held by the ledger",
	})

	// HistoryPending tracks calculations not yet mirrored to the active file.
	HistoryPending = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "calcshell",
		Subsystem: "ledger",
		Name:      "pending_records",
		Help:      "Calculations staged in memory but not yet written to the active history file",
	})
)

// RecordCommand records the outcome of one dispatched command.
func RecordCommand(command string, errKind string) {
	if errKind == "" {
		CommandsTotal.WithLabelValues(command, "ok").Inc()
		return
	}
	CommandsTotal.WithLabelValues(command, "error").Inc()
	CommandErrorsTotal.WithLabelValues(errKind).Inc()
}

// RecordWrite records one history file write.
func RecordWrite(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	HistoryWritesTotal.WithLabelValues(op, status).Inc()
}

// SetLedgerSize publishes the ledger's record and pending counts.
func SetLedgerSize(records, pending int) {
	HistoryRecords.Set(float64(records))
	HistoryPending.Set(float64(pending))
}

// WriteFile writes every registered metric to path in the Prometheus text format.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
