package nn

// Package nn is the interface layer between pedwatch and an object detection
// model. The model itself (eg a YOLO network behind an inference sidecar) is
// opaque to us; all we care about is detect(image) -> labeled boxes.

const DefaultProbabilityThreshold = 0.25
const DefaultInferenceSize = 1280

// NN object detection parameters
type DetectionParams struct {
	ProbabilityThreshold float32 // Value between 0 and 1. Lower values will find more objects. Zero value will use the default.
	InferenceSize        int     // Longest side of the image handed to the model. Zero value will use the default.
}

// Create a default DetectionParams object
func NewDetectionParams() *DetectionParams {
	return &DetectionParams{
		ProbabilityThreshold: DefaultProbabilityThreshold,
		InferenceSize:        DefaultInferenceSize,
	}
}

// ImageCrop is an RGB image handed to an ObjectDetector.
// To create one from a whole image, use WholeImage().
type ImageCrop struct {
	NChan       int    // Number of channels (eg 3 for RGB)
	Pixels      []byte // Packed pixel data, ImageWidth * ImageHeight * NChan bytes
	ImageWidth  int
	ImageHeight int
}

// Return a 'crop' of the entire image
func WholeImage(nchan int, pixels []byte, width, height int) ImageCrop {
	return ImageCrop{
		NChan:       nchan,
		Pixels:      pixels,
		ImageWidth:  width,
		ImageHeight: height,
	}
}

// ObjectDetector is given an image, and returns zero or more detected objects
type ObjectDetector interface {
	// Close closes the detector (you MUST call this when finished, in case the
	// implementation holds onto sockets or C++ objects)
	Close()

	// DetectObjects returns a list of objects detected in the image.
	// nchan is expected to be 3, and image is a 24-bit RGB image.
	// Boxes are returned in the coordinate space of 'img'.
	// You can create a default DetectionParams with NewDetectionParams()
	DetectObjects(img ImageCrop, params *DetectionParams) ([]ObjectDetection, error)
}
