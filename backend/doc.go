// Package backend's doc comment lives in backend.go; this file documents
// usage.
//
// # Backend Registration
//
// Backends register themselves via init() on import:
//
//	import _ "github.com/gogpu/xcompositor/backend/software"
//	import _ "github.com/gogpu/xcompositor/backend/gpu"
//
// # Backend Selection
//
//	b := backend.Default()          // best available
//	b := backend.Get("software")    // specific backend
//
// # Available Backends
//
//   - "software": CPU rasterizer built on internal/image.ImageBuf (always available)
//   - "gpu": negotiates a gogpu/wgpu device; all drawing runs on an
//     embedded software backend
package backend
