package detect

import (
	"fmt"
	"image"

	"github.com/bmharper/cimg/v2"
	"github.com/fogleman/gg"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/server/region"
)

type rgb struct {
	r, g, b int
}

// Box colors keyed by outcome. Green for waiting (counted), yellow for the
// near side of the wait line, red for overlapping the ROI.
var outcomeColors = map[region.Outcome]rgb{
	region.Waiting:     {0, 255, 0},
	region.BelowLine:   {255, 255, 0},
	region.AboveRegion: {255, 0, 0},
}

// annotator draws labeled detection boxes on a working copy of a frame.
// Purely for human inspection; never decision-relevant.
type annotator struct {
	ctx    *gg.Context
	width  int
	height int
}

func newAnnotator(img *cimg.Image) *annotator {
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	src := img.Pixels
	for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
		rgba.Pix[j+0] = src[i+0]
		rgba.Pix[j+1] = src[i+1]
		rgba.Pix[j+2] = src[i+2]
		rgba.Pix[j+3] = 255
	}
	return &annotator{
		ctx:    gg.NewContextForRGBA(rgba),
		width:  img.Width,
		height: img.Height,
	}
}

func (a *annotator) drawBox(obj nn.ObjectDetection, outcome region.Outcome) {
	c := outcomeColors[outcome]
	a.ctx.SetRGB255(c.r, c.g, c.b)
	a.ctx.SetLineWidth(2)
	a.ctx.DrawRectangle(float64(obj.Box.X), float64(obj.Box.Y), float64(obj.Box.Width), float64(obj.Box.Height))
	a.ctx.Stroke()
	label := fmt.Sprintf("%v %.2f", obj.Label, obj.Confidence)
	a.ctx.DrawString(label, float64(obj.Box.X), float64(obj.Box.Y-5))
}

func (a *annotator) encodeJPEG() ([]byte, error) {
	rgba, ok := a.ctx.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("Unexpected canvas image type %T", a.ctx.Image())
	}
	out := cimg.NewImage(a.width, a.height, cimg.PixelFormatRGB)
	dst := out.Pixels
	src := rgba.Pix
	for i, j := 0, 0; j < len(dst); i, j = i+4, j+3 {
		dst[j+0] = src[i+0]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
	}
	return cimg.Compress(out, cimg.MakeCompressParams(cimg.Sampling420, 85, 0))
}
