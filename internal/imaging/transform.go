package imaging

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Grayscale returns a new gray image holding the luma of every pixel.
// A gray source is deep copied. The source is loaded if deferred.
func (i *Image) Grayscale() (*Image, error) {
	buf, err := i.Buffer()
	if err != nil {
		return nil, err
	}
	s := buf.shape
	if s.Channels == 1 {
		dst := &Image{}
		dst.bind(buf.clone())
		return dst, nil
	}

	gray, err := NewPixelBuffer(s.Width, s.Height, 1, s.Depth)
	if err != nil {
		return nil, err
	}
	n := s.Depth.BytesPerSample()
	for y := 0; y < s.Height; y++ {
		src, dst := buf.Row(y), gray.Row(y)
		for x := 0; x < s.Width; x++ {
			putSample(dst[x*n:(x+1)*n], s.Depth, lumaOf(src[x*3*n:(x+1)*3*n], s.Depth))
		}
	}
	dst := &Image{}
	dst.bind(gray)
	return dst, nil
}

// Scale returns a new 8-bit image of the given size, resampled with a
// Lanczos filter. The channel mode of the source is kept.
func (i *Image) Scale(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid scale size %dx%d", ErrInvalidState, width, height)
	}
	buf, err := i.Buffer()
	if err != nil {
		return nil, err
	}

	mode := Gray
	if buf.shape.Channels == 3 {
		mode = RGB
	}
	scaled := imaging.Resize(bufferImage(buf), width, height, imaging.Lanczos)
	out, err := FromImageMode(scaled, mode)
	if err != nil {
		return nil, err
	}
	dst := &Image{}
	dst.bind(out)
	return dst, nil
}
