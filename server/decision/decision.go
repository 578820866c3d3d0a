// Package decision turns per-frame occupancy counts into a flow level and a
// green-light extension, and publishes the result to a durable JSON slot.
package decision

import "errors"

// FlowLevel is the discretized occupancy tier driving the extension decision
type FlowLevel string

const (
	FlowLow    FlowLevel = "low"
	FlowMedium FlowLevel = "medium"
	FlowHigh   FlowLevel = "high"
)

// Occupancy threshold between medium and high flow (average people per frame)
const highFlowThreshold = 15

// ErrNoCounts is returned by Aggregate when there is nothing to aggregate.
// Callers must skip publishing in that case.
var ErrNoCounts = errors.New("no counts to aggregate")

// Aggregate computes the mean occupancy over a batch of per-frame counts,
// and maps it to a flow level. Pure and deterministic.
func Aggregate(counts []int) (average float64, level FlowLevel, err error) {
	if len(counts) == 0 {
		return 0, FlowLow, ErrNoCounts
	}
	sum := 0
	for _, c := range counts {
		sum += c
	}
	average = float64(sum) / float64(len(counts))
	switch {
	case average == 0:
		level = FlowLow
	case average <= highFlowThreshold:
		level = FlowMedium
	default:
		level = FlowHigh
	}
	return average, level, nil
}

// ExtensionSeconds maps a flow level to the recommended additional green-light
// duration. Total over all levels.
func ExtensionSeconds(level FlowLevel) int {
	switch level {
	case FlowMedium:
		return 20
	case FlowHigh:
		return 40
	default:
		return 0
	}
}
