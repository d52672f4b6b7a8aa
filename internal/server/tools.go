package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Handle Lifecycle
		{
			Name:        "image_open",
			Description: "Open an image file and return a handle. By default the file is only recorded and decoded on first use; set lazy=false to decode immediately.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file. Relative paths resolve against the server images base directory, whether lazy or not",
					},
					"lazy": map[string]interface{}{
						"type":        "boolean",
						"description": "Defer decoding until the first query. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_create",
			Description: "Create a new zero-filled image and return its handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Height in pixels",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "Channel mode: gray or rgb. Default rgb",
						"enum":        []string{"gray", "rgb"},
					},
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "image_share",
			Description: "Return a new handle sharing the pixel buffer of an existing handle. Writes through either handle are visible through both.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_clone",
			Description: "Return a new handle holding an independent deep copy of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_release",
			Description: "Release a handle. The pixel buffer is freed when no other handle shares it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_list",
			Description: "List all open handles and their storage state.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Shape and Storage
		{
			Name:        "image_info",
			Description: "Get width, height, channels, depth, stride, share count and storage state of an image. Loads deferred images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_resize",
			Description: "Replace the image with a new zero-filled buffer of the given size. Handles that shared the old buffer keep their pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "New width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "New height in pixels",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "Channel mode: gray or rgb. Default keeps the current mode",
						"enum":        []string{"gray", "rgb"},
					},
				},
				"required": []string{"handle", "width", "height"},
			},
		},
		{
			Name:        "image_unload",
			Description: "Drop the in-memory pixels of an externally stored image. The file is decoded again on next use.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_save",
			Description: "Encode an image to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination file path",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "png, jpeg, gif, bmp or tiff. Default: from the file extension",
					},
				},
				"required": []string{"handle", "path"},
			},
		},

		// Pixel Access
		{
			Name:        "image_get_pixel",
			Description: "Get the value of a pixel as hex, RGB and HSL (plus the raw sample for gray images).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0 = top edge)",
					},
				},
				"required": []string{"handle", "x", "y"},
			},
		},
		{
			Name:        "image_set_pixel",
			Description: "Write a color to a pixel. Gray images store the color's luma. All handles sharing the buffer see the change.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0 = top edge)",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color such as #FF8000",
					},
				},
				"required": []string{"handle", "x", "y", "color"},
			},
		},
		{
			Name:        "image_matrix",
			Description: "Read a rectangular region as a numeric matrix, one row per image row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the region. Default 0",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the region. Default 0",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Region width. Default: to the right edge",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Region height. Default: to the bottom edge",
					},
					"grayscale": map[string]interface{}{
						"type":        "boolean",
						"description": "Reduce color images to luma. Default true. A color image with grayscale=false is rejected; use image_rgb_matrices for per-channel values",
						"default":     true,
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Scale values into [0,1]. Default false",
						"default":     false,
					},
				},
				"required": []string{"handle"},
			},
		},

		{
			Name:        "image_rgb_matrices",
			Description: "Read a rectangular region as three matrices (red, green, blue). Gray images yield three identical matrices.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the region. Default 0",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the region. Default 0",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Region width. Default: to the right edge",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Region height. Default: to the bottom edge",
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Scale values into [0,1]. Default false",
						"default":     false,
					},
				},
				"required": []string{"handle"},
			},
		},

		// Derived Images
		{
			Name:        "image_grayscale",
			Description: "Create a new gray image from the luma of an image and return its handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "image_scale",
			Description: "Create a resampled copy of an image (Lanczos) and return its handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Target width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Target height in pixels",
					},
				},
				"required": []string{"handle", "width", "height"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Create a deep copy of a rectangular region (or a named region such as top-left or center) and return its handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": map[string]interface{}{
						"type":        "string",
						"description": "Image handle returned by image_open, image_create or another tool",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Named region; overrides x, y, width and height",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge of the region",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge of the region",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Region width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Region height in pixels",
					},
				},
				"required": []string{"handle"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
