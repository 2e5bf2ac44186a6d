package scene

import "sync/atomic"

// A Store holds the currently active compiled scene. Publishing a new scene
// swaps the reference atomically so readers holding the previous scene are
// not affected.
type Store struct {
	current atomic.Pointer[Scene]
}

// Get the active scene or nil if no scene has been published yet.
func (s *Store) Current() *Scene {
	return s.current.Load()
}

// Make sc the active scene and return the previously active one.
func (s *Store) Publish(sc *Scene) *Scene {
	return s.current.Swap(sc)
}
