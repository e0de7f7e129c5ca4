package simar

import (
	"ar-viewer/internal/ar"
	"ar-viewer/math"
)

// Frame implements ar.Frame.
type Frame struct {
	timestamp int64
	changed   bool
	toTexture math.Affine2
	pose      ar.Pose
}

func (f *Frame) Timestamp() int64 { return f.timestamp }

func (f *Frame) HasDisplayGeometryChanged() bool { return f.changed }

func (f *Frame) Pose() ar.Pose { return f.pose }

// TransformCoordinates2D maps interleaved x,y pairs from one space to
// another. Unmappable requests leave out unchanged.
func (f *Frame) TransformCoordinates2D(from ar.Coordinates2D, in []float32, to ar.Coordinates2D, out []float32) {
	toNDC, ok := f.toNDC(from)
	if !ok {
		return
	}
	fromNDC, ok := f.fromNDC(to)
	if !ok {
		return
	}
	toNDC.Then(fromNDC).ApplyFloats(in, out)
}

func (f *Frame) toNDC(space ar.Coordinates2D) (math.Affine2, bool) {
	switch space {
	case ar.OpenGLNormalizedDevice:
		return math.Affine2Identity(), true
	case ar.ViewNormalized:
		return math.Affine2Scale(2, -2).Then(math.Affine2Translate(-1, 1)), true
	case ar.TextureNormalized:
		return f.toTexture.Inverse()
	}
	return math.Affine2{}, false
}

func (f *Frame) fromNDC(space ar.Coordinates2D) (math.Affine2, bool) {
	switch space {
	case ar.OpenGLNormalizedDevice:
		return math.Affine2Identity(), true
	case ar.ViewNormalized:
		return ndcToUnit(), true
	case ar.TextureNormalized:
		return f.toTexture, true
	}
	return math.Affine2{}, false
}

// ndcToUnit maps [-1,1]² with +y up onto [0,1]² with +y down.
func ndcToUnit() math.Affine2 {
	return math.Affine2Scale(0.5, -0.5).Then(math.Affine2Translate(0.5, 0.5))
}

// displayToTexture builds the NDC to camera-texture mapping for a viewport
// of viewW x viewH at rotation showing a camW x camH image. The image
// fills the viewport and the overflow is cropped equally on both sides.
// Unknown sizes fall back to an uncropped mapping.
func displayToTexture(rotation ar.Rotation, viewW, viewH, camW, camH int) math.Affine2 {
	turns := rotation.QuarterTurns()
	m := math.Affine2QuarterTurns(turns)

	if viewW > 0 && viewH > 0 && camW > 0 && camH > 0 {
		vw, vh := float32(viewW), float32(viewH)
		if turns%2 == 1 {
			vw, vh = vh, vw
		}
		viewAspect := vw / vh
		camAspect := float32(camW) / float32(camH)
		if viewAspect > camAspect {
			m = m.Then(math.Affine2Scale(1, camAspect/viewAspect))
		} else {
			m = m.Then(math.Affine2Scale(viewAspect/camAspect, 1))
		}
	}
	return m.Then(ndcToUnit())
}

var _ ar.Frame = (*Frame)(nil)
