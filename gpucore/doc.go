// Package gpucore defines the shared vocabulary between the overlay
// and its GPU device backends: opaque resource identifiers and the
// descriptor structs for programs and point render passes.
//
// Resource IDs are plain uint64 handles. Backends mint them and keep
// the mapping to native objects private, so callers can hold and pass
// GPU resources without importing any backend package.
package gpucore
