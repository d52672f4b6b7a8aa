package imaging

import (
	"fmt"
	"sync"
	"unsafe"
)

// CopyMode makes the aliasing intent of a copy explicit at the call site.
type CopyMode int

const (
	// ShallowCopy shares the source's pixel buffer.
	ShallowCopy CopyMode = iota
	// DeepCopy allocates an independent buffer with the same contents.
	DeepCopy
)

// Image is a handle to a reference-counted PixelBuffer.
//
// The zero value is an empty handle. Shape and pixel queries on an empty
// handle fail with ErrInvalidState; nothing is allocated implicitly.
//
// # Copy Semantics
//
// Several handles may reference the same buffer. Share and Assign produce
// such shallow copies: writes through one handle are visible through all of
// them. DeepCopy produces an independent buffer. An Image must not be copied
// by value (it contains a mutex); always use Share, DeepCopy, NewFrom or Move
// so the share count stays correct.
//
// # External Storage
//
// A handle can defer its content to a file with SetExternalStorage. The file
// is decoded by the handle's Codec on the first shape or pixel query. See
// storage.go for the state machine.
//
// # Thread Safety
//
// The share count is atomic and the lazy load runs at most once even when
// several goroutines query a deferred handle. Everything else follows the
// usual rule: mutation of a handle, and writes to pixel memory shared by
// several handles, must be serialized by the caller.
type Image struct {
	mu    sync.Mutex
	buf   *PixelBuffer
	shape Shape
	ext   *externalStorage
	codec Codec
}

// New allocates an image of the given size with 8-bit samples.
//
// Returns an error wrapping ErrInvalidState if width or height is not
// positive.
func New(width, height int, mode ChannelMode) (*Image, error) {
	return NewWithDepth(width, height, mode, Depth8U)
}

// NewWithDepth allocates an image with an explicit sample depth.
func NewWithDepth(width, height int, mode ChannelMode, depth PixelDepth) (*Image, error) {
	buf, err := NewPixelBuffer(width, height, mode.Channels(), depth)
	if err != nil {
		return nil, err
	}
	img := &Image{}
	img.bind(buf)
	return img, nil
}

// NewFromBuffer returns a handle bound to buf, retaining it.
func NewFromBuffer(buf *PixelBuffer) *Image {
	img := &Image{}
	img.bind(buf)
	return img
}

// NewFrom copies src into a new handle using the given mode.
func NewFrom(src *Image, mode CopyMode) *Image {
	if mode == DeepCopy {
		return src.DeepCopy()
	}
	return src.Share()
}

// Share returns a new handle referencing the same pixel buffer.
//
// A deferred binding is copied without loading; the new handle loads on its
// own first access.
func (i *Image) Share() *Image {
	i.mu.Lock()
	defer i.mu.Unlock()

	dst := &Image{codec: i.codec, ext: i.ext.copy()}
	if i.buf != nil {
		dst.bind(i.buf)
	}
	return dst
}

// DeepCopy returns a handle to a newly allocated buffer holding a copy of
// this handle's pixels. A deferred binding is copied without loading.
func (i *Image) DeepCopy() *Image {
	i.mu.Lock()
	defer i.mu.Unlock()

	dst := &Image{codec: i.codec, ext: i.ext.copy()}
	if i.buf != nil {
		dst.bind(i.buf.clone())
	}
	return dst
}

// Assign makes i a shallow copy of src, releasing whatever i referenced.
func (i *Image) Assign(src *Image) {
	i.AssignFrom(src, ShallowCopy)
}

// AssignFrom makes i a copy of src using the given mode.
func (i *Image) AssignFrom(src *Image, mode CopyMode) {
	if i == src {
		return
	}
	tmp := NewFrom(src, mode)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.unbind()
	i.buf, i.shape, i.ext, i.codec = tmp.buf, tmp.shape, tmp.ext, tmp.codec
}

// Move returns a handle holding i's state and leaves i empty. The share
// count of the buffer is unchanged.
func (i *Image) Move() *Image {
	i.mu.Lock()
	defer i.mu.Unlock()

	dst := &Image{buf: i.buf, shape: i.shape, ext: i.ext, codec: i.codec}
	i.reset()
	return dst
}

// MoveFrom transfers src's state into i, releasing what i referenced, and
// leaves src empty.
func (i *Image) MoveFrom(src *Image) {
	if i == src {
		return
	}
	tmp := src.Move()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.unbind()
	i.buf, i.shape, i.ext, i.codec = tmp.buf, tmp.shape, tmp.ext, tmp.codec
}

// Swap exchanges the complete state of two handles. Pixel memory is not
// touched.
func (i *Image) Swap(other *Image) {
	if i == other {
		return
	}
	first, second := i, other
	if uintptr(unsafe.Pointer(second)) < uintptr(unsafe.Pointer(first)) {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	i.buf, other.buf = other.buf, i.buf
	i.shape, other.shape = other.shape, i.shape
	i.ext, other.ext = other.ext, i.ext
	i.codec, other.codec = other.codec, i.codec
}

// Clear releases the buffer and any external storage binding.
func (i *Image) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.unbind()
	i.ext = nil
}

// Resize binds the handle to a new zeroed buffer of the given size.
//
// The previous buffer is released, never modified, so other handles that
// shared it keep their pixels. The sample depth of a bound handle is kept;
// an empty or deferred handle gets Depth8U. Any external binding is dropped.
func (i *Image) Resize(width, height int, mode ChannelMode) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	depth := Depth8U
	if i.buf != nil {
		depth = i.shape.Depth
	}
	buf, err := NewPixelBuffer(width, height, mode.Channels(), depth)
	if err != nil {
		return err
	}
	i.unbind()
	i.bind(buf)
	i.ext = nil
	return nil
}

// Shape returns the geometry of the image, loading it if deferred.
func (i *Image) Shape() (Shape, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.ready(); err != nil {
		return Shape{}, err
	}
	return i.shape, nil
}

// Width returns the image width in pixels.
func (i *Image) Width() (int, error) {
	s, err := i.Shape()
	return s.Width, err
}

// Height returns the image height in pixels.
func (i *Image) Height() (int, error) {
	s, err := i.Shape()
	return s.Height, err
}

// ChannelCount returns 1 for gray images and 3 for RGB images.
func (i *Image) ChannelCount() (int, error) {
	s, err := i.Shape()
	return s.Channels, err
}

// PixelDepth returns the sample depth.
func (i *Image) PixelDepth() (PixelDepth, error) {
	s, err := i.Shape()
	return s.Depth, err
}

// IsColor reports whether the image has three channels.
func (i *Image) IsColor() (bool, error) {
	s, err := i.Shape()
	return s.Channels == 3, err
}

// Buffer returns the buffer the handle references, loading it if deferred.
func (i *Image) Buffer() (*PixelBuffer, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ready()
}

// ShareCount returns how many handles reference the current buffer, or 0
// when no buffer is bound. It never triggers a load.
func (i *Image) ShareCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.buf == nil {
		return 0
	}
	return i.buf.Refs()
}

// IsEmpty reports whether the handle has neither a buffer nor a binding.
func (i *Image) IsEmpty() bool {
	return i.State() == StateEmpty
}

// ready returns the bound buffer, performing a pending load first.
// The caller must hold i.mu.
func (i *Image) ready() (*PixelBuffer, error) {
	if i.ext != nil && !i.ext.loaded {
		if err := i.load(); err != nil {
			return nil, err
		}
	}
	if i.buf == nil {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidState)
	}
	return i.buf, nil
}

func (i *Image) bind(buf *PixelBuffer) {
	buf.retain()
	i.buf = buf
	i.shape = buf.shape
}

func (i *Image) unbind() {
	if i.buf != nil {
		i.buf.release()
	}
	i.buf = nil
	i.shape = Shape{}
}

// reset forgets all state without releasing the buffer.
func (i *Image) reset() {
	i.buf = nil
	i.shape = Shape{}
	i.ext = nil
	i.codec = nil
}
