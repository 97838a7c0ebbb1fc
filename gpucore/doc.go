// Package gpucore provides shared GPU abstractions for the camera core's
// compute domains: filter application, YUV->RGBA conversion, depth
// unpacking, burst alignment/merge, and point-cloud/mesh rendering.
//
// # Architecture
//
// gpucore defines the [GPUAdapter] interface so the same dispatch logic
// works against any backend (the concrete wgpu-backed implementation lives
// in package gpubackend). GPU resources are managed via opaque IDs
// ([BufferID], [TextureID], etc.); the adapter is responsible for mapping
// IDs to real backend resources.
//
//	         +------------------+
//	         |  gpu.Processor   |  per-domain dimension cache, dedupe, stall guard
//	         +--------+---------+
//	                  |
//	         +--------v---------+
//	         |   GPUAdapter     |  (this package)
//	         +--------+---------+
//	                  |
//	         +--------v---------+
//	         |    gpubackend    |  wgpu-backed concrete implementation
//	         +------------------+
//
// # CPU Fallback
//
// Every compute domain also has a pure-Go reference implementation (in its
// owning package: filter, convert, burst, depth3d) used when no GPU adapter
// is registered and as the test oracle for the GPU path.
package gpucore
