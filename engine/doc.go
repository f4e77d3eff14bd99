// Package engine provides the small, software-only scene engine the xrscene
// composer drives.
//
// An Engine owns one render surface, a frame buffer and a task queue. Scenes
// hold cameras, lights, meshes, particle systems, sounds and animations and are
// rendered by a fixed pipeline:
//
//	Skybox → Transform → Projection → Clipping → Rasterization → Sprites → Overlay.
//
// The coordinate system is left-handed (+X right, +Y up, +Z into the screen),
// angles are radians.
//
// Scene state is only touched from the goroutine that runs Engine.Frame or
// from inside Engine.Do; background work (asset reads, decoding) posts its
// results back with Engine.Post.
package engine
