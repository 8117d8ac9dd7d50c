package view

import (
	"image"

	"github.com/soocke/gazemap-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the annotated camera frame next to the reference
// image, which is replaced by the heatmap overlay when a session finishes.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateOverlay(img image.Image)
	SetReference(img image.Image)
	Reset()
}

type capturePreview struct {
	captureLabel *LabelWidget
	overlayLabel *LabelWidget
	reference    image.Image
	prevCapture  *Img // last Tk photo image instance for capture
	prevOverlay  *Img // last Tk photo image instance for reference/overlay
	captureW     int
	captureH     int
	overlayW     int
	overlayH     int
}

// Internal state tracks current preview photos so we can dispose old images
// before replacing them, preventing accumulation of off-screen image data.

const (
	// Max preview dimensions. Scaling is proportional.
	maxPreviewW = 480
	maxPreviewH = 360
)

// NewCapturePreview creates the preview labels, grids them and returns the view.
// Layout: camera spans columns 0-1; reference/overlay spans columns 2-4.
func NewCapturePreview(row int) CapturePreview {
	placeholder := EncodePlaceholder()
	capPhoto := NewPhoto(Data(placeholder))
	ovlPhoto := NewPhoto(Data(placeholder))
	capture := Label(Image(capPhoto), Borderwidth(1), Relief("sunken"))
	overlay := Label(Image(ovlPhoto), Borderwidth(1), Relief("sunken"))
	Grid(capture, Row(row), Column(0), Columnspan(2), Sticky("nwe"), Padx("0.4m"), Pady("0.4m"))
	Grid(overlay, Row(row), Column(2), Columnspan(3), Sticky("nwe"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{
		captureLabel: capture, overlayLabel: overlay,
		prevCapture: capPhoto, prevOverlay: ovlPhoto,
		captureW: maxPreviewW, captureH: maxPreviewH,
		overlayW: maxPreviewW, overlayH: maxPreviewH,
	}
}

// EncodePlaceholder returns a blank PNG used before the first frame arrives.
func EncodePlaceholder() []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 240, 180)))
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	if v.captureLabel == nil || img == nil {
		return
	}
	v.prevCapture = replacePhoto(v.captureLabel, v.prevCapture, images.ScaleToFit(img, v.captureW, v.captureH))
}

func (v *capturePreview) UpdateOverlay(img image.Image) {
	if v.overlayLabel == nil || img == nil {
		return
	}
	v.prevOverlay = replacePhoto(v.overlayLabel, v.prevOverlay, images.ScaleToFit(img, v.overlayW, v.overlayH))
}

// SetReference shows the reference image until an overlay replaces it.
func (v *capturePreview) SetReference(img image.Image) {
	v.reference = img
	v.UpdateOverlay(img)
}

// Reset blanks the camera preview and puts the reference back.
func (v *capturePreview) Reset() {
	if v.captureLabel != nil {
		if v.prevCapture != nil {
			v.prevCapture.Delete()
		}
		v.prevCapture = NewPhoto(Data(EncodePlaceholder()))
		v.captureLabel.Configure(Image(v.prevCapture))
	}
	if v.reference != nil {
		v.UpdateOverlay(v.reference)
	}
}

// replacePhoto swaps the label image, deleting the previous photo to avoid
// retaining obsolete pixel buffers.
func replacePhoto(label *LabelWidget, prev *Img, img image.Image) *Img {
	if prev != nil {
		prev.Delete()
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	label.Configure(Image(photo))
	return photo
}
