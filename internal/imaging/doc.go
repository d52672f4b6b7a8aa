// Package imaging provides reference-counted image buffers with explicit
// sharing, deep copies and lazy loading from external files.
//
// An Image is a handle. Several handles can reference one PixelBuffer, and
// the buffer lives as long as the longest holder. Whether a copy shares or
// duplicates pixels is always chosen at the call site:
//
//	a, _ := imaging.New(64, 48, imaging.RGB)
//	b := a.Share()                          // same pixels as a
//	c := a.DeepCopy()                       // independent pixels
//	d := imaging.NewFrom(a, imaging.DeepCopy)
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner; X grows
// rightward and Y downward. Rows are Stride bytes apart, which may exceed
// the bytes a row of pixels needs.
//
// # External Storage
//
// SetExternalStorage binds a handle to a file without reading it. The first
// query that needs the shape or the pixels decodes the file through the
// handle's Codec, once. A failed load returns ErrStorageUnavailable and can
// be retried:
//
//	var img imaging.Image
//	img.SetExternalStorage("frame_color.jpg")
//	w, err := img.Width() // decodes frame_color.jpg here
//
// # Color Reduction
//
// Whenever a color must be reduced to one channel (SetPixel on a gray
// image, Float, grayscale matrices, Grayscale) the package uses Luma, a
// fixed BT.601 weighted sum with integer rounding.
//
// # Error Handling
//
// Errors wrap one of ErrInvalidState, ErrOutOfRange, ErrStorageUnavailable,
// ErrDecode or ErrEncode and can be matched with errors.Is.
package imaging
