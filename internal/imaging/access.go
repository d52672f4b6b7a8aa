package imaging

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
)

// At returns size bytes of pixel memory starting at column x, row y.
//
// The slice aliases the buffer: writing to it changes the pixel for every
// handle sharing the buffer. size is the caller's element size, usually
// the pixel size (channels times bytes per sample) or a single sample.
// Coordinates are not validated; use AtChecked when they come from outside.
func (i *Image) At(x, y, size int) ([]byte, error) {
	i.mu.Lock()
	buf, err := i.ready()
	i.mu.Unlock()
	if err != nil {
		return nil, err
	}
	off := y*buf.stride + x*buf.shape.PixelBytes()
	return buf.data[off : off+size : off+size], nil
}

// AtChecked is At with validation. It returns an error wrapping
// ErrOutOfRange if (x, y) lies outside the image or if size bytes would run
// past the end of row y.
func (i *Image) AtChecked(x, y, size int) ([]byte, error) {
	i.mu.Lock()
	buf, err := i.ready()
	i.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := checkPoint(buf.shape, x, y); err != nil {
		return nil, err
	}
	rowOff := x * buf.shape.PixelBytes()
	if size < 0 || rowOff+size > buf.shape.RowBytes() {
		return nil, fmt.Errorf("%w: %d bytes at (%d,%d) overrun the row", ErrOutOfRange, size, x, y)
	}
	off := y*buf.stride + rowOff
	return buf.data[off : off+size : off+size], nil
}

// Line returns the pixel bytes of row y, without any stride padding.
func (i *Image) Line(y int) ([]byte, error) {
	i.mu.Lock()
	buf, err := i.ready()
	i.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if y < 0 || y >= buf.shape.Height {
		return nil, fmt.Errorf("%w: row %d outside image height %d", ErrOutOfRange, y, buf.shape.Height)
	}
	return buf.Row(y), nil
}

// SetPixel writes c at (x, y).
//
// RGB images store the color channel-wise. Gray images store the luma of
// the color (see Luma). Alpha is ignored.
func (i *Image) SetPixel(x, y int, c color.Color) error {
	p, s, err := i.pixel(x, y)
	if err != nil {
		return err
	}
	r, g, b, _ := c.RGBA()
	if s.Depth == Depth8U {
		r, g, b = r>>8, g>>8, b>>8
	}
	n := s.Depth.BytesPerSample()
	if s.Channels == 1 {
		putSample(p, s.Depth, Luma(r, g, b))
		return nil
	}
	putSample(p[0:n], s.Depth, r)
	putSample(p[n:2*n], s.Depth, g)
	putSample(p[2*n:3*n], s.Depth, b)
	return nil
}

// Pixel returns the color at (x, y): color.Gray or color.Gray16 for gray
// images, color.RGBA or color.RGBA64 (opaque) for RGB images.
func (i *Image) Pixel(x, y int) (color.Color, error) {
	p, s, err := i.pixel(x, y)
	if err != nil {
		return nil, err
	}
	return pixelColor(p, s.Depth), nil
}

// Float returns the luma at (x, y) normalized to [0,1].
func (i *Image) Float(x, y int) (float64, error) {
	p, s, err := i.pixel(x, y)
	if err != nil {
		return 0, err
	}
	return float64(lumaOf(p, s.Depth)) / s.Depth.MaxValue(), nil
}

// AsImage returns an image.Image view of the pixels. The view aliases the
// buffer; gray images are returned as *image.Gray or *image.Gray16.
func (i *Image) AsImage() (image.Image, error) {
	buf, err := i.Buffer()
	if err != nil {
		return nil, err
	}
	return bufferImage(buf), nil
}

// Luma reduces three channel values to one:
//
//	Y = (299*R + 587*G + 114*B + 500) / 1000
//
// using ITU-R BT.601 weights with integer rounding. Inputs and output share
// the same sample range, so equal channels map to themselves.
func Luma(r, g, b uint32) uint32 {
	return (299*r + 587*g + 114*b + 500) / 1000
}

// pixel returns the bytes of the pixel at (x, y) and the image shape.
func (i *Image) pixel(x, y int) ([]byte, Shape, error) {
	i.mu.Lock()
	buf, err := i.ready()
	i.mu.Unlock()
	if err != nil {
		return nil, Shape{}, err
	}
	s := buf.shape
	if err := checkPoint(s, x, y); err != nil {
		return nil, s, err
	}
	off := y*buf.stride + x*s.PixelBytes()
	return buf.data[off : off+s.PixelBytes() : off+s.PixelBytes()], s, nil
}

func checkPoint(s Shape, x, y int) error {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d image", ErrOutOfRange, x, y, s.Width, s.Height)
	}
	return nil
}

func sample(p []byte, depth PixelDepth) uint32 {
	if depth == Depth16U {
		return uint32(binary.BigEndian.Uint16(p))
	}
	return uint32(p[0])
}

func putSample(p []byte, depth PixelDepth, v uint32) {
	if depth == Depth16U {
		binary.BigEndian.PutUint16(p, uint16(v))
		return
	}
	p[0] = uint8(v)
}

// lumaOf returns the gray value of a pixel; gray pixels are returned as is.
func lumaOf(p []byte, depth PixelDepth) uint32 {
	n := depth.BytesPerSample()
	if len(p) == n {
		return sample(p, depth)
	}
	return Luma(sample(p[0:n], depth), sample(p[n:2*n], depth), sample(p[2*n:3*n], depth))
}

func pixelColor(p []byte, depth PixelDepth) color.Color {
	n := depth.BytesPerSample()
	if len(p) == n {
		if depth == Depth16U {
			return color.Gray16{Y: uint16(sample(p, depth))}
		}
		return color.Gray{Y: p[0]}
	}
	r, g, b := sample(p[0:n], depth), sample(p[n:2*n], depth), sample(p[2*n:3*n], depth)
	if depth == Depth16U {
		return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}

// bufferImage wraps buf in an image.Image without copying. The view keeps
// the pixel slice it was created with, so it stays readable after the last
// handle releases the buffer.
func bufferImage(buf *PixelBuffer) image.Image {
	rect := image.Rect(0, 0, buf.shape.Width, buf.shape.Height)
	if buf.shape.Channels == 1 {
		if buf.shape.Depth == Depth16U {
			return &image.Gray16{Pix: buf.data, Stride: buf.stride, Rect: rect}
		}
		return &image.Gray{Pix: buf.data, Stride: buf.stride, Rect: rect}
	}
	return &rgbView{pix: buf.data, stride: buf.stride, depth: buf.shape.Depth, rect: rect}
}

// rgbView exposes three channel pixels as an opaque image.Image.
type rgbView struct {
	pix    []byte
	stride int
	depth  PixelDepth
	rect   image.Rectangle
}

func (v *rgbView) ColorModel() color.Model {
	if v.depth == Depth16U {
		return color.RGBA64Model
	}
	return color.RGBAModel
}

func (v *rgbView) Bounds() image.Rectangle { return v.rect }

func (v *rgbView) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(v.rect) {
		return color.RGBA{}
	}
	n := 3 * v.depth.BytesPerSample()
	off := y*v.stride + x*n
	return pixelColor(v.pix[off:off+n], v.depth)
}
