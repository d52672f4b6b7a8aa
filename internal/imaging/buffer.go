package imaging

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ChannelMode selects the channel layout of a new image.
type ChannelMode int

const (
	// Gray is a single luminance channel.
	Gray ChannelMode = iota
	// RGB is three interleaved channels in R, G, B order.
	RGB
)

// Channels returns the channel count of the mode.
func (m ChannelMode) Channels() int {
	if m == RGB {
		return 3
	}
	return 1
}

func (m ChannelMode) String() string {
	switch m {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	default:
		return fmt.Sprintf("ChannelMode(%d)", int(m))
	}
}

// ParseChannelMode maps "gray"/"grey"/"rgb"/"color" to a ChannelMode.
func ParseChannelMode(s string) (ChannelMode, error) {
	switch s {
	case "gray", "grey", "mono":
		return Gray, nil
	case "rgb", "color", "colour":
		return RGB, nil
	}
	return Gray, fmt.Errorf("%w: unknown channel mode %q", ErrInvalidState, s)
}

// PixelDepth is the storage type of a single channel sample.
type PixelDepth int

const (
	// Depth8U is an unsigned 8-bit sample. It is the default depth.
	Depth8U PixelDepth = iota
	// Depth16U is an unsigned 16-bit sample stored big-endian.
	Depth16U
)

// BytesPerSample returns the size in bytes of one channel sample.
func (d PixelDepth) BytesPerSample() int {
	if d == Depth16U {
		return 2
	}
	return 1
}

// MaxValue is the largest sample value representable at this depth.
func (d PixelDepth) MaxValue() float64 {
	if d == Depth16U {
		return 65535
	}
	return 255
}

func (d PixelDepth) String() string {
	switch d {
	case Depth8U:
		return "8U"
	case Depth16U:
		return "16U"
	default:
		return fmt.Sprintf("PixelDepth(%d)", int(d))
	}
}

// Shape describes the geometry of a pixel buffer.
type Shape struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Channels int        `json:"channels"`
	Depth    PixelDepth `json:"depth"`
}

// PixelBytes is the number of bytes a single pixel occupies.
func (s Shape) PixelBytes() int {
	return s.Channels * s.Depth.BytesPerSample()
}

// RowBytes is the minimum number of bytes a row needs, without padding.
func (s Shape) RowBytes() int {
	return s.Width * s.PixelBytes()
}

// PixelBuffer owns raw pixel memory and the number of Image handles that
// currently reference it.
//
// The shape of a buffer never changes after allocation. Rows start every
// Stride bytes; the bytes between RowBytes and Stride are padding.
//
// A buffer is created with a share count of zero. Binding it to an Image
// retains it; the memory is dropped when the last handle releases it.
type PixelBuffer struct {
	shape  Shape
	stride int
	data   []byte
	refs   atomic.Int32
}

// NewPixelBuffer allocates a zeroed buffer without row padding.
func NewPixelBuffer(width, height, channels int, depth PixelDepth) (*PixelBuffer, error) {
	return NewPixelBufferWithStride(width, height, channels, depth, 0)
}

// NewPixelBufferWithStride allocates a zeroed buffer whose rows are stride
// bytes apart. A stride of 0 selects the minimum row size.
func NewPixelBufferWithStride(width, height, channels int, depth PixelDepth, stride int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrInvalidState, width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidState, channels)
	}
	if depth != Depth8U && depth != Depth16U {
		return nil, fmt.Errorf("%w: unsupported pixel depth %v", ErrInvalidState, depth)
	}
	if width > math.MaxInt/(channels*depth.BytesPerSample()) {
		return nil, fmt.Errorf("%w: row of %d pixels overflows", ErrInvalidState, width)
	}
	shape := Shape{Width: width, Height: height, Channels: channels, Depth: depth}
	if stride == 0 {
		stride = shape.RowBytes()
	}
	if stride < shape.RowBytes() {
		return nil, fmt.Errorf("%w: stride %d shorter than row of %d bytes", ErrInvalidState, stride, shape.RowBytes())
	}
	if height > math.MaxInt/stride {
		return nil, fmt.Errorf("%w: %d rows of %d bytes overflow", ErrInvalidState, height, stride)
	}
	return &PixelBuffer{
		shape:  shape,
		stride: stride,
		data:   make([]byte, height*stride),
	}, nil
}

// Shape returns the buffer geometry.
func (b *PixelBuffer) Shape() Shape { return b.shape }

// Stride returns the distance in bytes between the starts of two rows.
func (b *PixelBuffer) Stride() int { return b.stride }

// Bytes returns the backing storage, Height*Stride bytes long.
// Writes through the slice are visible to every handle sharing the buffer.
func (b *PixelBuffer) Bytes() []byte { return b.data }

// Row returns the pixel bytes of row y, excluding padding.
func (b *PixelBuffer) Row(y int) []byte {
	off := y * b.stride
	return b.data[off : off+b.shape.RowBytes() : off+b.shape.RowBytes()]
}

// Refs returns the number of handles currently bound to the buffer.
func (b *PixelBuffer) Refs() int { return int(b.refs.Load()) }

func (b *PixelBuffer) retain() {
	b.refs.Add(1)
}

// release drops one reference and frees the memory when none remain.
func (b *PixelBuffer) release() {
	if b.refs.Add(-1) == 0 {
		b.data = nil
	}
}

// clone returns an unshared buffer with the same shape, stride and bytes.
func (b *PixelBuffer) clone() *PixelBuffer {
	c := &PixelBuffer{
		shape:  b.shape,
		stride: b.stride,
		data:   make([]byte, len(b.data)),
	}
	copy(c.data, b.data)
	return c
}
