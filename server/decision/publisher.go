package decision

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
)

// SignalDecision is the published decision state. Exactly one current decision
// exists at any time; every publish overwrites it wholesale.
type SignalDecision struct {
	AvgPeople     float64   `json:"avg_people"`
	Level         FlowLevel `json:"level"`
	ExtendSeconds int       `json:"extend_seconds"`
}

// ErrNoDecision means no decision has ever been published
var ErrNoDecision = errors.New("no decision published yet")

// ErrCorrupt means the durable decision state exists but is unparseable
var ErrCorrupt = errors.New("decision state is corrupt")

// Publisher owns the durable SignalDecision slot (a single JSON file).
// Writes go through a temp file and an atomic rename, so a concurrent reader
// never observes a half-written decision.
type Publisher struct {
	log  logs.Log
	path string
}

func NewPublisher(log logs.Log, path string) (*Publisher, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, fmt.Errorf("Failed to create decision state directory: %w", err)
	}
	return &Publisher{
		log:  log,
		path: path,
	}, nil
}

// Publish replaces the current decision with (average, level, extension)
func (p *Publisher) Publish(average float64, level FlowLevel) (SignalDecision, error) {
	d := SignalDecision{
		AvgPeople:     average,
		Level:         level,
		ExtendSeconds: ExtensionSeconds(level),
	}
	b, err := json.MarshalIndent(&d, "", "\t")
	if err != nil {
		return d, err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return d, err
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return d, err
	}
	p.log.Infof("Published decision: avg %.2f, level %v, extend %v seconds", d.AvgPeople, d.Level, d.ExtendSeconds)
	return d, nil
}

// Read returns the current decision.
// Returns ErrNoDecision if nothing has ever been published, and ErrCorrupt if
// the slot exists but cannot be parsed.
func (p *Publisher) Read() (*SignalDecision, error) {
	b, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoDecision
	} else if err != nil {
		return nil, err
	}
	d := &SignalDecision{}
	if err := json.Unmarshal(b, d); err != nil {
		return nil, ErrCorrupt
	}
	return d, nil
}
