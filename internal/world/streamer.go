package world

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Listener is notified of chunk lifecycle changes. Renderers implement it to
// build and dispose per-chunk resources.
type Listener interface {
	ChunkLoaded(c *Chunk)
	ChunkEvicted(c *Chunk)
}

// Streamer keeps the chunks around a tracked viewer loaded and evicts the
// ones that fall behind.
type Streamer struct {
	store    *Store
	radius   int
	margin   int
	listener Listener

	tracking bool
	last     Key
}

// NewStreamer creates a streamer driving store. Chunks within radius of the
// viewer are loaded; chunks beyond radius+margin are evicted.
func NewStreamer(store *Store, radius, margin int) *Streamer {
	if radius < 0 {
		radius = 0
	}
	if margin < 0 {
		margin = 0
	}
	return &Streamer{store: store, radius: radius, margin: margin}
}

// SetListener installs the lifecycle listener (nil to remove).
func (s *Streamer) SetListener(l Listener) {
	s.listener = l
}

// Store returns the store being driven.
func (s *Streamer) Store() *Store {
	return s.store
}

// EnsureLoaded loads every chunk within Chebyshev distance radius of the
// chunk containing center. Already loaded chunks are left untouched.
// It returns the number of chunks generated by this call.
func (s *Streamer) EnsureLoaded(center mgl64.Vec3, radius int) int {
	c := KeyAt(center)
	loaded := 0
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			ch, created := s.store.GetOrCreate(Key{X: c.X + dx, Z: c.Z + dz})
			if !created {
				continue
			}
			loaded++
			if s.listener != nil {
				s.listener.ChunkLoaded(ch)
			}
		}
	}
	return loaded
}

// EvictFar removes every chunk farther than bound (Chebyshev, in chunks)
// from the chunk containing center. It returns the number of evicted chunks.
func (s *Streamer) EvictFar(center mgl64.Vec3, bound int) int {
	c := KeyAt(center)
	evicted := 0
	for _, k := range s.store.Keys() {
		if k.Chebyshev(c) <= bound {
			continue
		}
		ch, ok := s.store.Remove(k)
		if !ok {
			continue
		}
		evicted++
		if s.listener != nil {
			s.listener.ChunkEvicted(ch)
		}
	}
	return evicted
}

// Track streams around the viewer at p. Work is only done on the first call
// and whenever the viewer crosses into a different chunk.
func (s *Streamer) Track(p mgl64.Vec3) {
	k := KeyAt(p)
	if s.tracking && k == s.last {
		return
	}
	s.tracking = true
	s.last = k
	s.EnsureLoaded(p, s.radius)
	s.EvictFar(p, s.radius+s.margin)
}

// Reset forgets the tracked position so the next Track call re-streams.
func (s *Streamer) Reset() {
	s.tracking = false
}
