package frame_extractor

import (
	"fmt"
	"image"
	"math"

	"gif_frame_node/frame_container"

	"github.com/disintegration/imaging"
)

// resize applies the request's sizing: an exact width x height box when both
// are set, otherwise a uniform scale, otherwise nothing.
func (e *extractorImpl) resize(img image.Image, req *Request) (image.Image, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if req.Width > 0 && req.Height > 0 {
		if err := checkTarget(float64(req.Width), float64(req.Height)); err != nil {
			return nil, err
		}

		filter := imaging.CatmullRom
		if req.Width < srcW || req.Height < srcH {
			filter = imaging.Lanczos
		}

		if req.Crop {
			return imaging.Fill(img, req.Width, req.Height, imaging.Center, filter), nil
		}

		return e.pad(img, req.Width, req.Height, filter)
	}

	if req.Scale != 1.0 && req.Scale != 0.0 {
		scaledW := math.Trunc(float64(srcW) * req.Scale)
		scaledH := math.Trunc(float64(srcH) * req.Scale)

		if !(scaledW > 0 && scaledH > 0) {
			return nil, fmt.Errorf("scale %g turns %dx%d frame into %gx%g", req.Scale, srcW, srcH, scaledW, scaledH)
		}

		if err := checkTarget(scaledW, scaledH); err != nil {
			return nil, err
		}

		width, height := int(scaledW), int(scaledH)

		filter := imaging.CatmullRom
		if req.Scale < 1.0 {
			filter = imaging.Lanczos
		}

		return imaging.Resize(img, width, height, filter), nil
	}

	return img, nil
}

// checkTarget refuses output sizes the source containers would refuse too.
// Dimensions are floats so oversized scales are caught before int conversion.
func checkTarget(width, height float64) error {
	if width*height > frame_container.MaxPixels {
		return fmt.Errorf("target size %gx%g exceeds %d pixels", width, height, frame_container.MaxPixels)
	}

	return nil
}

// pad fits img inside width x height keeping its aspect ratio and fills the
// rest of the box with the pad background.
func (e *extractorImpl) pad(img image.Image, width, height int, filter imaging.ResampleFilter) (image.Image, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	fitW, fitH := width, height

	switch {
	case srcW*height == srcH*width:
		return imaging.Resize(img, width, height, filter), nil
	case srcW*height > srcH*width:
		fitH = int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	default:
		fitW = int(math.Round(float64(srcW) * float64(height) / float64(srcH)))
	}

	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}

	padded, err := e.renderer.Pad(imaging.Resize(img, fitW, fitH, filter), width, height, e.background)
	if err != nil {
		return nil, err
	}

	return padded, nil
}
