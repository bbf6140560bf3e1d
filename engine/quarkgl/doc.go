// Package quarkgl provides a small, predictable software 3D engine for the viewer.
//
// QuarkGL owns everything the binding layer treats as "the engine": a scene graph of
// nodes, template cloning, point and spot lights, a look-at camera and a fixed
// pipeline rasterizer that draws into a caller-provided Target.
//
// Pipeline (fixed):
//
//	Scene → Node hierarchy → World transform → Projection → Rasterization → Target.
//
// Models are described in a small YAML document format (see DecodeModel). Geometry
// is immutable once decoded and shared between clones; everything a caller may
// mutate per instance (transform, material, lights, shadow flags) is copied.
package quarkgl
