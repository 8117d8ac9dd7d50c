package gaze

import (
	"fmt"

	"github.com/golang/geo/r2"
)

var (
	leftSocket  = [4]int{LeftEyeOuter, LeftEyeInner, LeftEyeUpper, LeftEyeLower}
	rightSocket = [4]int{RightEyeInner, RightEyeOuter, RightEyeUpper, RightEyeLower}
)

// Estimate converts one face's landmarks into a gaze vector and origin for a
// frame of width x height pixels.
//
// Each eye contributes the displacement of its pupil from the mean of its four
// socket points; the two displacements are averaged and the vertical
// component is flipped so that looking up yields a negative screen Y once
// projected. The estimate models no head pose or depth.
func Estimate(set LandmarkSet, width, height int) (Gaze, error) {
	if width <= 0 || height <= 0 {
		return Gaze{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, width, height)
	}
	if len(set) < MinLandmarks {
		return Gaze{}, fmt.Errorf("%w: got %d points, need %d", ErrIrisLandmarksMissing, len(set), MinLandmarks)
	}
	w, h := float64(width), float64(height)

	leftCenter := socketCenter(set, leftSocket, w, h)
	rightCenter := socketCenter(set, rightSocket, w, h)

	leftVec := set.Pixel(LeftPupil, w, h).Sub(leftCenter)
	rightVec := set.Pixel(RightPupil, w, h).Sub(rightCenter)

	vec := leftVec.Add(rightVec).Mul(0.5)
	vec.Y = -vec.Y

	return Gaze{Vector: vec, Origin: leftCenter.Add(rightCenter).Mul(0.5)}, nil
}

func socketCenter(set LandmarkSet, idx [4]int, w, h float64) r2.Point {
	var sum r2.Point
	for _, i := range idx {
		sum = sum.Add(set.Pixel(i, w, h))
	}
	return sum.Mul(1.0 / float64(len(idx)))
}

// EyeRegion returns the ten denormalized points Estimate reads: both sockets
// followed by both pupils.
func EyeRegion(set LandmarkSet, width, height int) []r2.Point {
	if len(set) < MinLandmarks {
		return nil
	}
	w, h := float64(width), float64(height)
	pts := make([]r2.Point, 0, 10)
	for _, i := range leftSocket {
		pts = append(pts, set.Pixel(i, w, h))
	}
	for _, i := range rightSocket {
		pts = append(pts, set.Pixel(i, w, h))
	}
	return append(pts, set.Pixel(LeftPupil, w, h), set.Pixel(RightPupil, w, h))
}
