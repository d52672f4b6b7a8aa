package imaging

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// StorageState is the lazy-load state of an Image handle.
type StorageState int

const (
	// StateEmpty: no buffer and no binding.
	StateEmpty StorageState = iota
	// StateLoaded: a buffer is bound. The handle may still carry a loaded
	// external binding.
	StateLoaded
	// StateDeferred: an external binding is present and not yet loaded.
	StateDeferred
)

func (s StorageState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("StorageState(%d)", int(s))
	}
}

// externalStorage records that a handle's pixels live in a file.
type externalStorage struct {
	path   string
	loaded bool
}

func (e *externalStorage) copy() *externalStorage {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// settings holds the process-wide defaults used by handles.
var settings = struct {
	sync.RWMutex
	imagesPathBase string
	codec          Codec
}{
	imagesPathBase: ".",
	codec:          &FileCodec{},
}

// SetImagesPathBase sets the directory that relative external storage paths
// are resolved against. The default is the working directory.
func SetImagesPathBase(dir string) {
	settings.Lock()
	settings.imagesPathBase = dir
	settings.Unlock()
}

// ImagesPathBase returns the directory relative external paths resolve to.
func ImagesPathBase() string {
	settings.RLock()
	defer settings.RUnlock()
	return settings.imagesPathBase
}

// SetDefaultCodec replaces the codec used by handles that have none set.
func SetDefaultCodec(c Codec) {
	settings.Lock()
	settings.codec = c
	settings.Unlock()
}

// DefaultCodec returns the codec used by handles that have none set.
func DefaultCodec() Codec {
	settings.RLock()
	defer settings.RUnlock()
	return settings.codec
}

func resolvePath(path string) string {
	base := ImagesPathBase()
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// SetCodec sets the codec used for external storage, LoadFromFile and
// SaveToFile. A nil codec selects DefaultCodec.
func (i *Image) SetCodec(c Codec) {
	i.mu.Lock()
	i.codec = c
	i.mu.Unlock()
}

func (i *Image) codecLocked() Codec {
	if i.codec != nil {
		return i.codec
	}
	return DefaultCodec()
}

// SetExternalStorage defers the handle's content to the file at path.
//
// Any buffer the handle referenced is released. The file is not touched
// until the first shape or pixel query, which decodes it exactly once.
// Relative paths are resolved against ImagesPathBase at load time.
func (i *Image) SetExternalStorage(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.unbind()
	i.ext = &externalStorage{path: path}
}

// State returns the lazy-load state without triggering a load.
func (i *Image) State() StorageState {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch {
	case i.ext != nil && !i.ext.loaded:
		return StateDeferred
	case i.buf != nil:
		return StateLoaded
	default:
		return StateEmpty
	}
}

// IsExternallyStored reports whether the handle carries an external binding,
// loaded or not.
func (i *Image) IsExternallyStored() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ext != nil
}

// ExternalStoragePath returns the path given to SetExternalStorage, or ""
// without a binding.
func (i *Image) ExternalStoragePath() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ext == nil {
		return ""
	}
	return i.ext.path
}

// ExternalStorageFile returns the binding's path resolved against
// ImagesPathBase, or "" without a binding.
func (i *Image) ExternalStorageFile() string {
	p := i.ExternalStoragePath()
	if p == "" {
		return ""
	}
	return resolvePath(p)
}

// Load forces a pending external load. It is a no-op on a loaded handle.
func (i *Image) Load() error {
	_, err := i.Buffer()
	return err
}

// UnloadExternal releases the in-memory pixels of a loaded external image
// and returns the handle to the deferred state, so the next access decodes
// the file again. Handles without a binding are left untouched.
func (i *Image) UnloadExternal() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ext == nil || !i.ext.loaded {
		return
	}
	i.unbind()
	i.ext.loaded = false
}

// load decodes the bound file. The caller must hold i.mu. On failure the
// handle stays deferred.
func (i *Image) load() error {
	file := resolvePath(i.ext.path)
	buf, err := i.codecLocked().Decode(file)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, file, err)
	}
	i.unbind()
	i.bind(buf)
	i.ext.loaded = true

	slog.Debug("loaded external image",
		"path", file,
		"width", buf.shape.Width,
		"height", buf.shape.Height,
		"channels", buf.shape.Channels)
	return nil
}

// LoadFromFile decodes path immediately and binds the result, dropping any
// external binding. Relative paths resolve against ImagesPathBase, as for
// SetExternalStorage. On failure the handle is unchanged.
func (i *Image) LoadFromFile(path string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	file := resolvePath(path)
	buf, err := i.codecLocked().Decode(file)
	if err != nil {
		return fmt.Errorf("failed to load image %s: %w", file, err)
	}
	i.unbind()
	i.bind(buf)
	i.ext = nil
	return nil
}

// SaveToFile encodes the image to path. An empty format picks the format
// from the file extension. A deferred handle is loaded first.
func (i *Image) SaveToFile(path string, format Format) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	buf, err := i.ready()
	if err != nil {
		return err
	}
	if err := i.codecLocked().Encode(buf, path, format); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
