package game

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/protocol"
)

// Replica is the last known state of a remote participant. Replicas never
// take part in collision.
type Replica struct {
	ID       string
	Name     string
	Score    int
	Position mgl64.Vec3
	Rotation mgl64.Vec3
}

// Replicas holds every remote participant keyed by id.
type Replicas struct {
	byID map[string]*Replica
}

// NewReplicas creates an empty set.
func NewReplicas() *Replicas {
	return &Replicas{byID: make(map[string]*Replica)}
}

// Add registers a participant at the spawn point, replacing any previous
// record with the same id.
func (r *Replicas) Add(id, name string) *Replica {
	rep := &Replica{ID: id, Name: name, Position: object.Spawn}
	r.byID[id] = rep
	return rep
}

// Load replaces the set with a roster snapshot, skipping self.
func (r *Replicas) Load(players []protocol.Player, self string) {
	clear(r.byID)
	for _, p := range players {
		if p.ID == self {
			continue
		}
		r.byID[p.ID] = &Replica{
			ID:       p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Position: p.Position.Vec(),
			Rotation: p.Rotation.Vec(),
		}
	}
}

// Update overwrites a known participant's state. Updates for unknown ids are
// dropped and reported as false.
func (r *Replicas) Update(m protocol.PlayerUpdate) bool {
	rep, ok := r.byID[m.ID]
	if !ok {
		return false
	}
	rep.Position = m.Position.Vec()
	rep.Rotation = m.Rotation.Vec()
	rep.Score = m.Score
	return true
}

// Remove forgets a participant.
func (r *Replicas) Remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

// Get returns the replica for id.
func (r *Replicas) Get(id string) (*Replica, bool) {
	rep, ok := r.byID[id]
	return rep, ok
}

// Len returns the number of remote participants.
func (r *Replicas) Len() int {
	return len(r.byID)
}

// All returns the replicas ordered by name, then id.
func (r *Replicas) All() []*Replica {
	out := make([]*Replica, 0, len(r.byID))
	for _, rep := range r.byID {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clear forgets every participant.
func (r *Replicas) Clear() {
	clear(r.byID)
}
