package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/server/region"
	"github.com/pedwatch/pedwatch/server/store"
	"github.com/stretchr/testify/require"
)

// writeTestJPEG creates a blank JPEG fixture on disk
func writeTestJPEG(t *testing.T, dir, name string, width, height int) string {
	img := cimg.NewImage(width, height, cimg.PixelFormatRGB)
	jpg, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling420, 90, 0))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, jpg, 0644))
	return path
}

// testRegion returns geometry sized for a 64x48 test frame:
// wait line at y=10, ROI top at y=40
func testRegion(t *testing.T) *region.WaitingRegion {
	r, err := region.NewWaitingRegion([]nn.Point{
		{X: 0, Y: 40},
		{X: 60, Y: 40},
		{X: 60, Y: 47},
		{X: 0, Y: 47},
	}, 10)
	require.NoError(t, err)
	return r
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestJPEG(t, dir, "frame.jpg", 64, 48)
	results, err := store.NewDir(filepath.Join(dir, "results"))
	require.NoError(t, err)

	model := nn.NewScriptedDetector([]nn.ObjectDetection{
		// In the waiting band, counted
		{Label: "pedestrian", Confidence: 0.9, Box: nn.Rect{X: 5, Y: 15, Width: 10, Height: 20}},
		// Case-insensitive label match
		{Label: "Pedestrian", Confidence: 0.8, Box: nn.Rect{X: 20, Y: 15, Width: 10, Height: 20}},
		// At or above the wait line, not counted
		{Label: "pedestrian", Confidence: 0.9, Box: nn.Rect{X: 5, Y: 2, Width: 10, Height: 8}},
		// Overlaps the ROI, not counted
		{Label: "pedestrian", Confidence: 0.9, Box: nn.Rect{X: 5, Y: 20, Width: 10, Height: 25}},
		// Wrong class, ignored
		{Label: "car", Confidence: 0.9, Box: nn.Rect{X: 30, Y: 15, Width: 10, Height: 20}},
		// Below confidence threshold, ignored
		{Label: "pedestrian", Confidence: 0.1, Box: nn.Rect{X: 45, Y: 15, Width: 10, Height: 20}},
	})
	d := NewDetector(logs.NewTestingLog(t), model, testRegion(t), results, nil)

	r := d.DetectFile(path)
	require.Equal(t, "frame.jpg", r.Filename)
	require.Equal(t, 2, r.PeopleWaiting)
	require.True(t, r.ArtifactSaved)

	// Annotated artifact is a decodable JPEG keyed by the source base name
	artifact, err := results.Read("frame.jpg")
	require.NoError(t, err)
	decoded, err := cimg.Decompress(artifact)
	require.NoError(t, err)
	require.Equal(t, 64, decoded.Width)
	require.Equal(t, 48, decoded.Height)
}

func TestDetectFileUndecodable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0644))
	results, err := store.NewDir(filepath.Join(dir, "results"))
	require.NoError(t, err)

	model := nn.NewScriptedDetector()
	d := NewDetector(logs.NewTestingLog(t), model, testRegion(t), results, nil)

	r := d.DetectFile(path)
	require.Equal(t, 0, r.PeopleWaiting)
	require.False(t, r.ArtifactSaved)
	// The model is never invoked for an undecodable frame
	require.Equal(t, 0, model.Calls())
}

func TestDetectFileMissing(t *testing.T) {
	results, err := store.NewDir(filepath.Join(t.TempDir(), "results"))
	require.NoError(t, err)
	d := NewDetector(logs.NewTestingLog(t), nn.NewScriptedDetector(), testRegion(t), results, nil)
	r := d.DetectFile(filepath.Join(t.TempDir(), "missing.jpg"))
	require.Equal(t, 0, r.PeopleWaiting)
}

func TestInferenceResize(t *testing.T) {
	dir := t.TempDir()
	// 2560 wide forces a 2x downscale to the 1280 inference size; the scripted
	// box is in inference coordinates and must be mapped back to source pixels.
	path := writeTestJPEG(t, dir, "wide.jpg", 2560, 960)
	results, err := store.NewDir(filepath.Join(dir, "results"))
	require.NoError(t, err)

	reg, err := region.NewWaitingRegion([]nn.Point{
		{X: 0, Y: 800},
		{X: 2500, Y: 810},
		{X: 2400, Y: 950},
		{X: 100, Y: 940},
	}, 200)
	require.NoError(t, err)

	// In inference space: y=150, h=200 -> source y=300, y2=700: inside the band
	model := nn.NewScriptedDetector([]nn.ObjectDetection{
		{Label: "pedestrian", Confidence: 0.9, Box: nn.Rect{X: 100, Y: 150, Width: 40, Height: 200}},
	})
	d := NewDetector(logs.NewTestingLog(t), model, reg, results, nil)

	r := d.DetectFile(path)
	require.Equal(t, 1, r.PeopleWaiting)
}
