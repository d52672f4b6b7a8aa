// Package server implements the MCP (Model Context Protocol) server for image buffer tools.
//
// This package provides a JSON-RPC 2.0 server that exposes reference-counted image
// handles through the MCP protocol. Clients open or create images, receive opaque
// handle ids, and drive sharing, copying, pixel access and lazy loading through
// tool calls.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Handle Lifecycle:
//   - image_open: Bind a handle to a file (decoded lazily by default)
//   - image_create: Allocate a new gray or RGB image
//   - image_share: New handle sharing the same pixel buffer
//   - image_clone: New handle with an independent copy
//   - image_release: Drop a handle
//   - image_list: List open handles
//
// Shape and Storage:
//   - image_info: Shape, stride, share count and storage state
//   - image_resize: Reallocate with a new size
//   - image_unload: Drop the pixels of a file-backed image
//   - image_save: Encode to a file
//
// Pixel Access:
//   - image_get_pixel, image_set_pixel: Single pixel read and write
//   - image_matrix: Region as a numeric matrix
//   - image_rgb_matrices: Region as one matrix per channel
//
// Derived Images:
//   - image_grayscale, image_scale
//   - image_crop: Deep copy of a rectangle or named region
//
// # Handles
//
// Handle ids are random UUIDs held in a Registry for the lifetime of the
// server process or until image_release. Handles created by image_share
// alias the same pixels; a write through one is visible through the others.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.NewWithOptions(server.Options{Logger: logger})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
