package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCodec records Decode calls and delegates to next.
type countingCodec struct {
	next    Codec
	decodes atomic.Int32
	fail    atomic.Bool
}

func (c *countingCodec) Decode(path string) (*PixelBuffer, error) {
	c.decodes.Add(1)
	if c.fail.Load() {
		return nil, errors.New("simulated decode failure")
	}
	return c.next.Decode(path)
}

func (c *countingCodec) Encode(buf *PixelBuffer, path string, format Format) error {
	return c.next.Encode(buf, path, format)
}

// writeJPEG writes a width x height JPEG filled with c into dir.
func writeJPEG(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 95}))
	return path
}

// writePNG writes img as a PNG into dir.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// withImagesPathBase points relative external paths at dir for one test.
func withImagesPathBase(t *testing.T, dir string) {
	t.Helper()
	prev := ImagesPathBase()
	SetImagesPathBase(dir)
	t.Cleanup(func() { SetImagesPathBase(prev) })
}

func TestExternalStorage_LoadsOnceOnFirstQuery(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, dir, "frame_color.jpg", 320, 240, color.RGBA{200, 100, 50, 255})
	withImagesPathBase(t, dir)

	codec := &countingCodec{next: &FileCodec{}}
	var img Image
	img.SetCodec(codec)
	assert.Equal(t, StateEmpty, img.State())

	img.SetExternalStorage("frame_color.jpg")
	assert.Equal(t, StateDeferred, img.State())
	assert.True(t, img.IsExternallyStored())
	assert.Equal(t, "frame_color.jpg", img.ExternalStoragePath())
	assert.Equal(t, filepath.Join(dir, "frame_color.jpg"), img.ExternalStorageFile())
	assert.Zero(t, codec.decodes.Load(), "binding does not read the file")

	w, err := img.Width()
	require.NoError(t, err)
	h, err := img.Height()
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
	assert.Equal(t, StateLoaded, img.State())

	isColor, err := img.IsColor()
	require.NoError(t, err)
	assert.True(t, isColor)
	_, err = img.Pixel(10, 10)
	require.NoError(t, err)

	assert.Equal(t, int32(1), codec.decodes.Load())
	assert.True(t, img.IsExternallyStored(), "binding kept after load")
}

func TestExternalStorage_FailedLoadIsRetryable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.png")

	codec := &countingCodec{next: &FileCodec{}}
	img := &Image{}
	img.SetCodec(codec)
	img.SetExternalStorage(path)

	_, err := img.Width()
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, StateDeferred, img.State())

	writePNG(t, dir, "later.png", image.NewGray(image.Rect(0, 0, 7, 5)))

	w, err := img.Width()
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, int32(2), codec.decodes.Load())
}

func TestExternalStorage_DecodeErrorSurfaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	img := &Image{}
	img.SetExternalStorage(path)
	_, err := img.Buffer()
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestExternalStorage_SimulatedFailure(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "ok.png", image.NewRGBA(image.Rect(0, 0, 3, 3)))

	codec := &countingCodec{next: &FileCodec{}}
	codec.fail.Store(true)
	img := &Image{}
	img.SetCodec(codec)
	img.SetExternalStorage(path)

	assert.ErrorIs(t, img.SetPixel(0, 0, color.White), ErrStorageUnavailable)
	assert.Equal(t, int32(1), codec.decodes.Load(), "one attempt per failing call")

	codec.fail.Store(false)
	require.NoError(t, img.SetPixel(0, 0, color.White))
	assert.Equal(t, int32(2), codec.decodes.Load())
}

func TestExternalStorage_DropsCurrentBuffer(t *testing.T) {
	img := mustNew(t, 4, 4, RGB)
	other := img.Share()

	img.SetExternalStorage("somewhere.png")
	assert.Equal(t, 1, other.ShareCount())
	assert.Zero(t, img.ShareCount())
}

func TestExternalStorage_CopiesLoadIndependently(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "shared.png", image.NewRGBA(image.Rect(0, 0, 6, 2)))

	codec := &countingCodec{next: &FileCodec{}}
	a := &Image{}
	a.SetCodec(codec)
	a.SetExternalStorage(path)

	b := a.Share()
	c := a.DeepCopy()
	assert.Zero(t, codec.decodes.Load(), "copying a deferred handle does not load")
	assert.Equal(t, StateDeferred, b.State())
	assert.Equal(t, StateDeferred, c.State())

	require.NoError(t, a.Load())
	assert.Equal(t, StateDeferred, b.State(), "bindings are per handle")

	_, err := b.Width()
	require.NoError(t, err)
	_, err = c.Width()
	require.NoError(t, err)
	assert.Equal(t, int32(3), codec.decodes.Load())
	assert.Equal(t, 1, a.ShareCount(), "separately loaded buffers are not shared")

	d := a.Share()
	assert.Equal(t, StateLoaded, d.State())
	assert.Equal(t, 2, a.ShareCount())
	_, err = d.Width()
	require.NoError(t, err)
	assert.Equal(t, int32(3), codec.decodes.Load())
}

func TestExternalStorage_ConcurrentFirstAccessDecodesOnce(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "race.png", image.NewRGBA(image.Rect(0, 0, 16, 16)))

	codec := &countingCodec{next: &FileCodec{}}
	img := &Image{}
	img.SetCodec(codec)
	img.SetExternalStorage(path)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := img.Height(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Height error: %v", err)
	}
	assert.Equal(t, int32(1), codec.decodes.Load())
	assert.Equal(t, 1, img.ShareCount())
}

func TestUnloadExternal(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "unload.png", image.NewGray(image.Rect(0, 0, 2, 2)))

	codec := &countingCodec{next: &FileCodec{}}
	img := &Image{}
	img.SetCodec(codec)
	img.SetExternalStorage(path)
	require.NoError(t, img.Load())

	img.UnloadExternal()
	assert.Equal(t, StateDeferred, img.State())
	assert.Zero(t, img.ShareCount())

	require.NoError(t, img.Load())
	assert.Equal(t, int32(2), codec.decodes.Load())

	plain := mustNew(t, 2, 2, Gray)
	plain.UnloadExternal()
	assert.Equal(t, StateLoaded, plain.State(), "no binding, nothing to unload")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "eager.png", image.NewRGBA(image.Rect(0, 0, 9, 4)))

	img := &Image{}
	img.SetExternalStorage("ignored.png")
	require.NoError(t, img.LoadFromFile(path))
	assert.False(t, img.IsExternallyStored())

	s, err := img.Shape()
	require.NoError(t, err)
	assert.Equal(t, Shape{Width: 9, Height: 4, Channels: 3, Depth: Depth8U}, s)

	err = img.LoadFromFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	w, err := img.Width()
	require.NoError(t, err)
	assert.Equal(t, 9, w, "failed load leaves the handle unchanged")
}

func TestLoadFromFile_RelativePathMatchesLazyLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "relative.png", image.NewRGBA(image.Rect(0, 0, 7, 5)))
	withImagesPathBase(t, dir)

	eager := &Image{}
	require.NoError(t, eager.LoadFromFile("relative.png"))

	lazy := &Image{}
	lazy.SetExternalStorage("relative.png")

	eagerShape, err := eager.Shape()
	require.NoError(t, err)
	lazyShape, err := lazy.Shape()
	require.NoError(t, err)
	assert.Equal(t, Shape{Width: 7, Height: 5, Channels: 3, Depth: Depth8U}, eagerShape)
	assert.Equal(t, eagerShape, lazyShape)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := mustNew(t, 5, 3, RGB)
	require.NoError(t, src.SetPixel(4, 2, color.RGBA{0x10, 0x20, 0x30, 0xff}))

	path := filepath.Join(dir, "out.png")
	require.NoError(t, src.SaveToFile(path, FormatAuto))

	var back Image
	back.SetExternalStorage(path)
	got, err := back.Pixel(4, 2)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xff}, got)

	var empty Image
	assert.ErrorIs(t, empty.SaveToFile(filepath.Join(dir, "none.png"), FormatAuto), ErrInvalidState)
}

func TestResolvePath(t *testing.T) {
	withImagesPathBase(t, "/data/images")

	assert.Equal(t, "/data/images/a/b.png", resolvePath("a/b.png"))
	assert.Equal(t, "/abs/c.png", resolvePath("/abs/c.png"))

	SetImagesPathBase("")
	assert.Equal(t, "rel.png", resolvePath("rel.png"))
}
