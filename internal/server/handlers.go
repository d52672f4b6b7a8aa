package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-buffer-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_open", "image_info").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, imaging.ErrStorageUnavailable) {
			s.notify("notifications/message", map[string]interface{}{
				"level":  "warning",
				"logger": "imaging",
				"data":   err.Error(),
			})
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves image handles from the registry
//  4. Calls the appropriate imaging operation
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Handle Lifecycle
	case "image_open":
		return s.handleImageOpen(args)
	case "image_create":
		return s.handleImageCreate(args)
	case "image_share":
		return s.handleImageShare(args)
	case "image_clone":
		return s.handleImageClone(args)
	case "image_release":
		return s.handleImageRelease(args)
	case "image_list":
		return s.handleImageList(args)

	// Shape and Storage
	case "image_info":
		return s.handleImageInfo(args)
	case "image_resize":
		return s.handleImageResize(args)
	case "image_unload":
		return s.handleImageUnload(args)
	case "image_save":
		return s.handleImageSave(args)

	// Pixel Access
	case "image_get_pixel":
		return s.handleImageGetPixel(args)
	case "image_set_pixel":
		return s.handleImageSetPixel(args)
	case "image_matrix":
		return s.handleImageMatrix(args)
	case "image_rgb_matrices":
		return s.handleImageRGBMatrices(args)

	// Derived Images
	case "image_grayscale":
		return s.handleImageGrayscale(args)
	case "image_scale":
		return s.handleImageScale(args)
	case "image_crop":
		return s.handleImageCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// HandleResult identifies a handle and its storage state.
type HandleResult struct {
	Handle string `json:"handle"`
	State  string `json:"state"`
}

// ImageInfo describes a handle after its shape has been resolved.
type ImageInfo struct {
	Handle       string `json:"handle"`
	State        string `json:"state"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Channels     int    `json:"channels"`
	Depth        string `json:"depth"`
	IsColor      bool   `json:"is_color"`
	Stride       int    `json:"stride"`
	ShareCount   int    `json:"share_count"`
	ExternalPath string `json:"external_path,omitempty"`
}

// PixelResult is the value of one pixel.
type PixelResult struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MatrixResult is a dense matrix of sample values, one row per image row.
type MatrixResult struct {
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	Data [][]float64 `json:"data"`
}

func (s *Server) register(img *imaging.Image) *HandleResult {
	id := s.registry.Add(img)
	s.logger.Debug("registered image", "handle", id, "state", img.State())
	return &HandleResult{Handle: id, State: img.State().String()}
}

func (s *Server) lookup(args json.RawMessage, dst interface{ handleID() string }) (*imaging.Image, error) {
	if err := json.Unmarshal(args, dst); err != nil {
		return nil, err
	}
	return s.registry.Get(dst.handleID())
}

type handleArgs struct {
	Handle string `json:"handle"`
}

func (a *handleArgs) handleID() string { return a.Handle }

// Limits on images the server allocates on behalf of a client.
const (
	maxImageSide   = 1 << 16
	maxImagePixels = 1 << 28
)

func checkImageSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil // reported by the imaging package
	}
	if width > maxImageSide || height > maxImageSide || width*height > maxImagePixels {
		return fmt.Errorf("image size %dx%d exceeds the limit of %d pixels per side and %d pixels total",
			width, height, maxImageSide, maxImagePixels)
	}
	return nil
}

// === Handle Lifecycle Handlers ===

type imageOpenArgs struct {
	Path string `json:"path"`
	Lazy *bool  `json:"lazy,omitempty"`
}

func (s *Server) handleImageOpen(args json.RawMessage) (interface{}, error) {
	var a imageOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	img := &imaging.Image{}
	img.SetCodec(s.codec)
	if a.Lazy == nil || *a.Lazy {
		img.SetExternalStorage(a.Path)
	} else if err := img.LoadFromFile(a.Path); err != nil {
		return nil, err
	}
	return s.register(img), nil
}

type imageCreateArgs struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mode   string `json:"mode"`
}

func (s *Server) handleImageCreate(args json.RawMessage) (interface{}, error) {
	var a imageCreateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = "rgb"
	}
	mode, err := imaging.ParseChannelMode(a.Mode)
	if err != nil {
		return nil, err
	}
	if err := checkImageSize(a.Width, a.Height); err != nil {
		return nil, err
	}
	img, err := imaging.New(a.Width, a.Height, mode)
	if err != nil {
		return nil, err
	}
	img.SetCodec(s.codec)
	return s.register(img), nil
}

func (s *Server) handleImageShare(args json.RawMessage) (interface{}, error) {
	img, err := s.lookup(args, &handleArgs{})
	if err != nil {
		return nil, err
	}
	return s.register(img.Share()), nil
}

func (s *Server) handleImageClone(args json.RawMessage) (interface{}, error) {
	img, err := s.lookup(args, &handleArgs{})
	if err != nil {
		return nil, err
	}
	return s.register(img.DeepCopy()), nil
}

func (s *Server) handleImageRelease(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.registry.Release(a.Handle) {
		return nil, fmt.Errorf("unknown image handle: %q", a.Handle)
	}
	return map[string]interface{}{"handle": a.Handle, "released": true}, nil
}

func (s *Server) handleImageList(args json.RawMessage) (interface{}, error) {
	ids := s.registry.IDs()
	handles := make([]HandleResult, 0, len(ids))
	for _, id := range ids {
		img, err := s.registry.Get(id)
		if err != nil {
			// Released concurrently.
			continue
		}
		handles = append(handles, HandleResult{Handle: id, State: img.State().String()})
	}
	return map[string]interface{}{"handles": handles}, nil
}

// === Shape and Storage Handlers ===

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	a := &handleArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	buf, err := img.Buffer()
	if err != nil {
		return nil, err
	}
	shape := buf.Shape()
	return &ImageInfo{
		Handle:       a.Handle,
		State:        img.State().String(),
		Width:        shape.Width,
		Height:       shape.Height,
		Channels:     shape.Channels,
		Depth:        shape.Depth.String(),
		IsColor:      shape.Channels == 3,
		Stride:       buf.Stride(),
		ShareCount:   img.ShareCount(),
		ExternalPath: img.ExternalStorageFile(),
	}, nil
}

type imageResizeArgs struct {
	handleArgs
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mode   string `json:"mode"`
}

func (s *Server) handleImageResize(args json.RawMessage) (interface{}, error) {
	a := &imageResizeArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	if err := checkImageSize(a.Width, a.Height); err != nil {
		return nil, err
	}
	mode := imaging.RGB
	if a.Mode != "" {
		if mode, err = imaging.ParseChannelMode(a.Mode); err != nil {
			return nil, err
		}
	} else if isColor, err := img.IsColor(); err == nil && !isColor {
		mode = imaging.Gray
	}
	if err := img.Resize(a.Width, a.Height, mode); err != nil {
		return nil, err
	}
	return &HandleResult{Handle: a.Handle, State: img.State().String()}, nil
}

func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	a := &handleArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	if !img.IsExternallyStored() {
		return nil, fmt.Errorf("image %s has no external storage", a.Handle)
	}
	img.UnloadExternal()
	return &HandleResult{Handle: a.Handle, State: img.State().String()}, nil
}

type imageSaveArgs struct {
	handleArgs
	Path   string `json:"path"`
	Format string `json:"format"`
}

func (s *Server) handleImageSave(args json.RawMessage) (interface{}, error) {
	a := &imageSaveArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := img.SaveToFile(a.Path, imaging.Format(a.Format)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"handle": a.Handle, "path": a.Path, "saved": true}, nil
}

// === Pixel Access Handlers ===

type imagePixelArgs struct {
	handleArgs
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleImageGetPixel(args json.RawMessage) (interface{}, error) {
	a := &imagePixelArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	c, err := img.Pixel(a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &PixelResult{X: a.X, Y: a.Y, Color: describeColor(c)}, nil
}

func (s *Server) handleImageSetPixel(args json.RawMessage) (interface{}, error) {
	a := &imagePixelArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	c, err := parseHexColor(a.Color)
	if err != nil {
		return nil, err
	}
	if err := img.SetPixel(a.X, a.Y, c); err != nil {
		return nil, err
	}
	stored, err := img.Pixel(a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &PixelResult{X: a.X, Y: a.Y, Color: describeColor(stored)}, nil
}

type imageMatrixArgs struct {
	handleArgs
	X         int   `json:"x"`
	Y         int   `json:"y"`
	Width     *int  `json:"width,omitempty"`
	Height    *int  `json:"height,omitempty"`
	Grayscale *bool `json:"grayscale,omitempty"`
	Normalize bool  `json:"normalize"`
}

func (s *Server) handleImageMatrix(args json.RawMessage) (interface{}, error) {
	a := &imageMatrixArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	w, h := a.extent()
	gray := a.Grayscale == nil || *a.Grayscale

	m := imaging.NewDense(0, 0)
	if err := img.GetAsMatrix(m, gray, a.X, a.Y, w, h, a.Normalize); err != nil {
		return nil, err
	}
	return matrixResult(m), nil
}

// RGBMatricesResult holds one matrix per channel of the same region.
type RGBMatricesResult struct {
	Red   *MatrixResult `json:"red"`
	Green *MatrixResult `json:"green"`
	Blue  *MatrixResult `json:"blue"`
}

func (a *imageMatrixArgs) extent() (int, int) {
	w, h := imaging.WholeExtent, imaging.WholeExtent
	if a.Width != nil {
		w = *a.Width
	}
	if a.Height != nil {
		h = *a.Height
	}
	return w, h
}

func matrixResult(m *imaging.Dense) *MatrixResult {
	rows, cols := m.Dims()
	data := make([][]float64, rows)
	for r := range data {
		data[r] = m.Row(r)
	}
	return &MatrixResult{Rows: rows, Cols: cols, Data: data}
}

func (s *Server) handleImageRGBMatrices(args json.RawMessage) (interface{}, error) {
	a := &imageMatrixArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	w, h := a.extent()
	red, green, blue := imaging.NewDense(0, 0), imaging.NewDense(0, 0), imaging.NewDense(0, 0)
	if err := img.GetAsRGBMatrices(red, green, blue, a.X, a.Y, w, h, a.Normalize); err != nil {
		return nil, err
	}
	return &RGBMatricesResult{Red: matrixResult(red), Green: matrixResult(green), Blue: matrixResult(blue)}, nil
}

// === Derived Image Handlers ===

func (s *Server) handleImageGrayscale(args json.RawMessage) (interface{}, error) {
	img, err := s.lookup(args, &handleArgs{})
	if err != nil {
		return nil, err
	}
	gray, err := img.Grayscale()
	if err != nil {
		return nil, err
	}
	gray.SetCodec(s.codec)
	return s.register(gray), nil
}

type imageScaleArgs struct {
	handleArgs
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleImageScale(args json.RawMessage) (interface{}, error) {
	a := &imageScaleArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	if err := checkImageSize(a.Width, a.Height); err != nil {
		return nil, err
	}
	scaled, err := img.Scale(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	scaled.SetCodec(s.codec)
	return s.register(scaled), nil
}

type imageCropArgs struct {
	handleArgs
	Region string `json:"region,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	a := &imageCropArgs{}
	img, err := s.lookup(args, a)
	if err != nil {
		return nil, err
	}
	var cropped *imaging.Image
	if a.Region != "" {
		cropped, err = img.CropRegion(a.Region)
	} else {
		cropped, err = img.Crop(a.X, a.Y, a.Width, a.Height)
	}
	if err != nil {
		return nil, err
	}
	cropped.SetCodec(s.codec)
	return s.register(cropped), nil
}
