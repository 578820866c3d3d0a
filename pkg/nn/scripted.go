package nn

import "sync"

// ScriptedDetector is an ObjectDetector that replays canned responses.
// It exists so that the detection pipeline can be exercised without model
// weights or an inference sidecar (in unit tests, or when no sidecar is configured).
type ScriptedDetector struct {
	lock      sync.Mutex
	responses [][]ObjectDetection
	next      int
	calls     int
}

// NewScriptedDetector returns a detector that cycles through 'responses',
// one per DetectObjects call.
func NewScriptedDetector(responses ...[]ObjectDetection) *ScriptedDetector {
	return &ScriptedDetector{
		responses: responses,
	}
}

func (s *ScriptedDetector) Close() {
}

func (s *ScriptedDetector) DetectObjects(img ImageCrop, params *DetectionParams) ([]ObjectDetection, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls++
	if len(s.responses) == 0 {
		return nil, nil
	}
	r := s.responses[s.next%len(s.responses)]
	s.next++
	// Copy, because the detector pipeline mutates boxes in-place when mapping
	// them back to source resolution.
	out := make([]ObjectDetection, len(r))
	copy(out, r)
	return out, nil
}

// Calls returns the number of DetectObjects invocations so far
func (s *ScriptedDetector) Calls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls
}
