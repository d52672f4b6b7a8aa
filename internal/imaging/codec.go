package imaging

import (
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Format names an encoded image file format.
type Format string

// Supported encode formats. FormatAuto picks the format from the file
// extension.
const (
	FormatAuto Format = ""
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Codec turns files into pixel buffers and back. Image handles never read
// file bytes themselves; every decode goes through a Codec.
type Codec interface {
	// Decode reads the file at path into a new, unshared PixelBuffer.
	Decode(path string) (*PixelBuffer, error)

	// Encode writes buf to path in the given format.
	Encode(buf *PixelBuffer, path string, format Format) error
}

// FileCodec is the default Codec. It decodes PNG, JPEG, GIF, BMP, TIFF and
// WebP files and encodes all of them except WebP.
//
// Gray files decode to Gray images (8 or 16 bit). Everything else decodes
// to 8-bit RGB; transparent pixels are composited onto black.
type FileCodec struct {
	// AutoOrient applies the EXIF orientation tag of JPEG files.
	AutoOrient bool

	// JPEGQuality is the quality used when encoding JPEG (1-100).
	// Zero selects the library default.
	JPEGQuality int
}

// Decode implements Codec. A missing or unreadable file returns the
// filesystem error; undecodable content returns an error wrapping ErrDecode.
func (c *FileCodec) Decode(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(c.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return FromImage(img)
}

// Encode implements Codec. Errors wrap ErrEncode.
func (c *FileCodec) Encode(buf *PixelBuffer, path string, format Format) error {
	var (
		f   imaging.Format
		err error
	)
	if format == FormatAuto {
		f, err = imaging.FormatFromFilename(path)
	} else {
		f, err = imaging.FormatFromExtension(string(format))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	var opts []imaging.EncodeOption
	if c.JPEGQuality > 0 {
		opts = append(opts, imaging.JPEGQuality(c.JPEGQuality))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := imaging.Encode(out, bufferImage(buf), f, opts...); err != nil {
		out.Close()
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// FromImage copies img into a new PixelBuffer. *image.Gray and
// *image.Gray16 keep a single channel; every other image becomes 8-bit RGB.
func FromImage(img image.Image) (*PixelBuffer, error) {
	switch src := img.(type) {
	case *image.Gray:
		return copyGray(src.Pix, src.Stride, src.Rect, Depth8U)
	case *image.Gray16:
		return copyGray(src.Pix, src.Stride, src.Rect, Depth16U)
	}
	return FromImageMode(img, RGB)
}

// FromImageMode copies img into a new 8-bit PixelBuffer with the given
// channel layout. Gray output uses Luma.
func FromImageMode(img image.Image, mode ChannelMode) (*PixelBuffer, error) {
	bounds := img.Bounds()
	if mode == Gray {
		if src, ok := img.(*image.Gray); ok {
			return copyGray(src.Pix, src.Stride, src.Rect, Depth8U)
		}
	}
	buf, err := NewPixelBuffer(bounds.Dx(), bounds.Dy(), mode.Channels(), Depth8U)
	if err != nil {
		return nil, err
	}

	// AsRGBA rebases the image at the origin and premultiplies alpha.
	rgba := clone.AsRGBA(img)
	for y := 0; y < buf.shape.Height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+buf.shape.Width*4]
		dst := buf.Row(y)
		for x := 0; x < buf.shape.Width; x++ {
			r, g, b := src[x*4], src[x*4+1], src[x*4+2]
			if mode == Gray {
				dst[x] = uint8(Luma(uint32(r), uint32(g), uint32(b)))
				continue
			}
			dst[x*3] = r
			dst[x*3+1] = g
			dst[x*3+2] = b
		}
	}
	return buf, nil
}

func copyGray(pix []byte, stride int, rect image.Rectangle, depth PixelDepth) (*PixelBuffer, error) {
	buf, err := NewPixelBuffer(rect.Dx(), rect.Dy(), 1, depth)
	if err != nil {
		return nil, err
	}
	for y := 0; y < buf.shape.Height; y++ {
		copy(buf.Row(y), pix[y*stride:])
	}
	return buf, nil
}
