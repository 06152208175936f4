package world

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Store owns the mapping from chunk key to live chunk. There is at most one
// chunk per key. A Store is not safe for concurrent use; it belongs to the
// tick goroutine of one client.
type Store struct {
	gen    Generator
	chunks map[Key]*Chunk

	generated int // total generations, for diagnostics and tests
}

// NewStore creates an empty store generating with gen.
func NewStore(gen Generator) *Store {
	return &Store{
		gen:    gen,
		chunks: make(map[Key]*Chunk, 64),
	}
}

// Get returns the chunk at k if it is loaded.
func (s *Store) Get(k Key) (*Chunk, bool) {
	c, ok := s.chunks[k]
	return c, ok
}

// Has reports whether k is loaded.
func (s *Store) Has(k Key) bool {
	_, ok := s.chunks[k]
	return ok
}

// GetOrCreate returns the live chunk at k, generating it on first request.
// The second result is true when the chunk was generated by this call.
func (s *Store) GetOrCreate(k Key) (*Chunk, bool) {
	if c, ok := s.chunks[k]; ok {
		return c, false
	}
	c := s.gen.Generate(k)
	s.chunks[k] = c
	s.generated++
	return c, true
}

// Remove drops the chunk at k and returns it, if it was loaded.
func (s *Store) Remove(k Key) (*Chunk, bool) {
	c, ok := s.chunks[k]
	if ok {
		delete(s.chunks, k)
	}
	return c, ok
}

// Len returns the number of loaded chunks.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Generated returns how many chunks have been generated over the store's lifetime.
func (s *Store) Generated() int {
	return s.generated
}

// Keys returns the loaded keys in a stable order (by Z, then X).
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

// Neighborhood calls fn for each loaded chunk in the 3x3 block centered on
// the chunk containing p. Unloaded neighbors are skipped. If fn returns true,
// iteration stops early.
func (s *Store) Neighborhood(p mgl64.Vec3, fn func(c *Chunk) bool) {
	center := KeyAt(p)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			c, ok := s.chunks[Key{X: center.X + dx, Z: center.Z + dz}]
			if !ok {
				continue
			}
			if fn(c) {
				return
			}
		}
	}
}
