// Package region holds the fixed waiting-region geometry of the camera scene,
// and classifies detected boxes against it.
package region

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pedwatch/pedwatch/pkg/nn"
)

// Outcome of classifying one box against the waiting region
type Outcome int

const (
	// Waiting means the box lies in the band between the wait line and the ROI,
	// ie the person is standing in the waiting area.
	Waiting Outcome = iota
	// BelowLine means the box is entirely at or above the wait line in image
	// coordinates (smaller y = higher in frame, so this is the side nearest the camera).
	BelowLine
	// AboveRegion means the box overlaps or is beyond the ROI.
	AboveRegion
)

func (o Outcome) String() string {
	switch o {
	case Waiting:
		return "waiting"
	case BelowLine:
		return "belowLine"
	default:
		return "aboveRegion"
	}
}

// WaitingRegion is a fixed pair of constants in camera pixel coordinates:
// a closed polygon marking the ROI (eg the zebra crossing), and a horizontal
// wait line. Set once at startup, never mutated.
type WaitingRegion struct {
	Polygon   []nn.Point `json:"polygon"`
	WaitLineY int        `json:"waitLineY"`

	regionTop int // minimum y among polygon vertices
}

// DefaultRegion returns the geometry of the original deployment's camera scene
func DefaultRegion() *WaitingRegion {
	r, _ := NewWaitingRegion([]nn.Point{
		{X: 747, Y: 381},
		{X: 1160, Y: 390},
		{X: 1115, Y: 966},
		{X: 253, Y: 907},
	}, 186)
	return r
}

func NewWaitingRegion(polygon []nn.Point, waitLineY int) (*WaitingRegion, error) {
	if len(polygon) < 3 {
		return nil, fmt.Errorf("Waiting region polygon needs at least 3 points, got %v", len(polygon))
	}
	for i, p := range polygon {
		next := polygon[(i+1)%len(polygon)]
		if p.Distance(next) == 0 {
			return nil, fmt.Errorf("Waiting region polygon has coincident vertices at index %v", i)
		}
	}
	r := &WaitingRegion{
		Polygon:   polygon,
		WaitLineY: waitLineY,
		regionTop: polygon[0].Y,
	}
	for _, p := range polygon {
		if p.Y < r.regionTop {
			r.regionTop = p.Y
		}
	}
	return r, nil
}

// Load reads the region geometry from a JSON config file
func Load(filename string) (*WaitingRegion, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	raw := WaitingRegion{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("Failed to parse region config %v: %w", filename, err)
	}
	return NewWaitingRegion(raw.Polygon, raw.WaitLineY)
}

// RegionTop is the topmost extent (minimum y) of the ROI polygon
func (r *WaitingRegion) RegionTop() int {
	return r.regionTop
}

// Classify decides where 'box' lies relative to the region.
// The three outcomes are mutually exclusive and cover every possible box;
// only Waiting contributes to the occupancy count.
func (r *WaitingRegion) Classify(box nn.Rect) Outcome {
	if box.Y2() < r.regionTop && box.Y > r.WaitLineY {
		return Waiting
	}
	if box.Y2() <= r.WaitLineY {
		return BelowLine
	}
	return AboveRegion
}
