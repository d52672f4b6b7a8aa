package imaging

import (
	"fmt"
	"image"
)

// RegionRect returns the rectangle of a named region of a width x height
// image. Names are top-left, top-right, bottom-left, bottom-right,
// top-half, bottom-half, left-half, right-half and center (the middle
// 50% on each axis).
func RegionRect(region string, width, height int) (image.Rectangle, error) {
	midX, midY := width/2, height/2

	switch region {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	case "center":
		qW, qH := width/4, height/4
		return image.Rect(qW, qH, width-qW, height-qH), nil
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", region)
	}
}

// Crop returns a new image holding a deep copy of the w x h rectangle at
// (x, y). Channel mode and depth are kept. The source is loaded if
// deferred.
func (i *Image) Crop(x, y, w, h int) (*Image, error) {
	buf, err := i.Buffer()
	if err != nil {
		return nil, err
	}
	s := buf.shape
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > s.Width || y+h > s.Height {
		return nil, fmt.Errorf("%w: crop region (%d,%d) %dx%d outside image %dx%d",
			ErrOutOfRange, x, y, w, h, s.Width, s.Height)
	}

	out, err := NewPixelBuffer(w, h, s.Channels, s.Depth)
	if err != nil {
		return nil, err
	}
	from, to := x*s.PixelBytes(), (x+w)*s.PixelBytes()
	for row := 0; row < h; row++ {
		copy(out.Row(row), buf.Row(y + row)[from:to])
	}
	dst := &Image{}
	dst.bind(out)
	return dst, nil
}

// CropRegion is Crop with a rectangle named as in RegionRect.
func (i *Image) CropRegion(region string) (*Image, error) {
	s, err := i.Shape()
	if err != nil {
		return nil, err
	}
	r, err := RegionRect(region, s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	return i.Crop(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}
