// Package gpucore provides shared GPU abstractions for the compositor's
// GPU-accelerated backend.
//
// This package defines the [GPUAdapter] interface, an engine-neutral
// boundary between backend/gpu and a concrete GPU binding. Its only
// implementation is backend/gpu's wgpu adapter over gogpu/wgpu.
//
// # Architecture
//
// backend/gpu negotiates a wgpu device and exposes it through a
// GPUAdapter, but it does not translate Command values into calls on this
// interface. The wgpu adapter reports backend/gpu's ErrNotImplemented
// from shader module, buffer, texture, bind group, and pipeline creation
// (a shader module is recorded under an ID for bookkeeping only).
//
//	+------------------+
//	|   backend/gpu    |
//	+--------+---------+
//	         |
//	+--------v---------+
//	|     gpucore      |
//	|  (GPUAdapter)    |
//	+--------+---------+
//	         |
//	+--------v---------+
//	|   wgpu adapter   |
//	+--------+---------+
//	         |
//	+--------v---------+
//	|    gogpu/wgpu    |
//	+------------------+
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([BufferID], [TextureID], etc.).
// The [GPUAdapter] interface provides creation and destruction methods for
// each resource type; adapters track the mapping between IDs and actual
// GPU resources.
//
// # CPU Fallback
//
// backend/gpu does not choose between GPU and CPU per operation: every
// drawing operation it performs runs on an embedded backend/software
// instance, without going through this package.
package gpucore
