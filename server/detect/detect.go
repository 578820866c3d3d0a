// Package detect runs object detection on one uploaded snapshot, counts the
// pedestrians standing in the waiting region, and writes an annotated copy of
// the frame for human inspection.
package detect

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/server/region"
	"github.com/pedwatch/pedwatch/server/store"
)

// TargetClass is the detection label that we count
const TargetClass = "pedestrian"

// Detector analyzes single frames. The detection model is injected, so tests
// can substitute an nn.ScriptedDetector. Detectors hold no mutable state
// between calls, so one Detector is safe for concurrent use.
type Detector struct {
	log     logs.Log
	model   nn.ObjectDetector
	params  *nn.DetectionParams
	region  *region.WaitingRegion
	results *store.Dir
}

// FrameResult is the output of analyzing one image
type FrameResult struct {
	Filename      string // base name of the source image
	PeopleWaiting int
	ArtifactSaved bool // true if the annotated copy was written to the results store
}

func NewDetector(log logs.Log, model nn.ObjectDetector, reg *region.WaitingRegion, results *store.Dir, params *nn.DetectionParams) *Detector {
	if params == nil {
		params = nn.NewDetectionParams()
	}
	return &Detector{
		log:     log,
		model:   model,
		params:  params,
		region:  reg,
		results: results,
	}
}

// DetectFile analyzes the image at 'path'.
// Failures are recovered locally: an unreadable or undecodable image is logged
// and contributes a zero count. The batch never aborts because of one frame.
func (d *Detector) DetectFile(path string) FrameResult {
	result := FrameResult{Filename: filepath.Base(path)}

	raw, err := os.ReadFile(path)
	if err != nil {
		d.log.Errorf("Failed to read %v: %v", path, err)
		return result
	}
	img, err := cimg.Decompress(raw)
	if err != nil {
		d.log.Errorf("Failed to decode %v: %v", path, err)
		return result
	}
	if img.NChan() != 3 {
		d.log.Errorf("Unexpected %v channel image in %v", img.NChan(), path)
		return result
	}

	inference, xform := d.inferenceImage(img)
	objects, err := d.model.DetectObjects(nn.WholeImage(inference.NChan(), inference.Pixels, inference.Width, inference.Height), d.params)
	if err != nil {
		d.log.Errorf("Detection failed on %v: %v", path, err)
		return result
	}
	xform.ApplyBackward(objects)

	canvas := newAnnotator(img)
	for _, obj := range objects {
		if !strings.EqualFold(obj.Label, TargetClass) {
			continue
		}
		if obj.Confidence < d.params.ProbabilityThreshold {
			continue
		}
		outcome := d.region.Classify(obj.Box)
		if outcome == region.Waiting {
			result.PeopleWaiting++
		}
		canvas.drawBox(obj, outcome)
	}

	jpg, err := canvas.encodeJPEG()
	if err != nil {
		d.log.Errorf("Failed to encode annotated copy of %v: %v", path, err)
	} else if err := d.results.SaveBytes(result.Filename, jpg); err != nil {
		d.log.Errorf("Failed to save annotated copy of %v: %v", path, err)
	} else {
		result.ArtifactSaved = true
	}

	d.log.Infof("%v: %v people in waiting region", result.Filename, result.PeopleWaiting)
	return result
}

// inferenceImage scales the frame so its longest side equals the configured
// inference size, and returns the transform that maps detections back into
// source pixels. Frames already small enough are passed through unchanged.
func (d *Detector) inferenceImage(img *cimg.Image) (*cimg.Image, nn.ResizeTransform) {
	longest := max(img.Width, img.Height)
	size := d.params.InferenceSize
	if size <= 0 {
		size = nn.DefaultInferenceSize
	}
	if longest <= size {
		return img, nn.IdentityTransform()
	}
	scale := float64(size) / float64(longest)
	infW := max(1, int(float64(img.Width)*scale+0.5))
	infH := max(1, int(float64(img.Height)*scale+0.5))
	resized := cimg.ResizeNew(img, infW, infH, nil)
	return resized, nn.ResizeTransform{
		ScaleX: float32(img.Width) / float32(infW),
		ScaleY: float32(img.Height) / float32(infH),
	}
}
