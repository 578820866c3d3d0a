package nn

// ObjectDetection is an object that a neural network has found in an image
type ObjectDetection struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        Rect    `json:"box"`
}

// ResizeTransform maps detections from the resolution that the NN model saw,
// back to the resolution of the original image.
type ResizeTransform struct {
	ScaleX float32
	ScaleY float32
}

// IdentityTransform returns a transform that leaves boxes unchanged
func IdentityTransform() ResizeTransform {
	return ResizeTransform{ScaleX: 1, ScaleY: 1}
}

// ApplyBackward scales boxes from NN space back into original image space, in-place
func (t ResizeTransform) ApplyBackward(detections []ObjectDetection) {
	for i := range detections {
		b := &detections[i].Box
		b.X = int(float32(b.X)*t.ScaleX + 0.5)
		b.Y = int(float32(b.Y)*t.ScaleY + 0.5)
		b.Width = int(float32(b.Width)*t.ScaleX + 0.5)
		b.Height = int(float32(b.Height)*t.ScaleY + 0.5)
	}
}
