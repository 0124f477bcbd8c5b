package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/cooling-monitor/internal/logic"
)

// StatusJSON is the JSON object served to dashboard clients.
type StatusJSON struct {
	Temperature logic.Value `json:"temperature"`
	Humidity    logic.Value `json:"humidity"`
	MosfetOn    bool        `json:"mosfet_on"`
	Displ       string      `json:"displ"`
	MosfetOnSec int64       `json:"mosfet_on_time"`
	Summary     string      `json:"summary"`
	MaxTemp     logic.Value `json:"max_temp"`
	MinTemp     logic.Value `json:"min_temp"`
	AvgTemp     logic.Value `json:"avg_temp"`
}

// TelemetryJSON is the MQTT telemetry payload: the status object plus a
// timestamp and tick counter.
type TelemetryJSON struct {
	StatusJSON
	Timestamp string `json:"timestamp"`
	Tick      uint64 `json:"tick"`
}

// Build converts a snapshot to its JSON shape.
func Build(snap Snapshot) StatusJSON {
	summary := string(snap.Summary)
	if summary == "" {
		summary = string(logic.SummaryNormal)
	}

	return StatusJSON{
		Temperature: snap.Temperature,
		Humidity:    snap.Humidity,
		MosfetOn:    snap.Actuator.On,
		Displ:       snap.Displ,
		MosfetOnSec: snap.Actuator.OnSeconds(),
		Summary:     summary,
		MaxTemp:     snap.Stats.Max,
		MinTemp:     snap.Stats.Min,
		AvgTemp:     snap.Stats.Avg,
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.Marshal(Build(snap))
	return data
}

// FormatTelemetry returns the JSON payload for the MQTT telemetry topic.
func FormatTelemetry(snap Snapshot) []byte {
	data, _ := json.Marshal(TelemetryJSON{
		StatusJSON: Build(snap),
		Timestamp:  snap.At.UTC().Format(time.RFC3339),
		Tick:       snap.Tick,
	})
	return data
}
