// Package models defines the tracker's data model: the fixed muscle catalog,
// muscle records, workout events, plan commitments, user stats, recovery
// settings and the snapshot that aggregates them.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/growth"
)

// MuscleID identifies one of the fixed body regions.
type MuscleID string

const (
	Chest      MuscleID = "chest"
	Abs        MuscleID = "abs"
	Biceps     MuscleID = "biceps"
	Quads      MuscleID = "quads"
	FrontDelt  MuscleID = "front-delt"
	Traps      MuscleID = "traps"
	Lats       MuscleID = "lats"
	Triceps    MuscleID = "triceps"
	Hamstrings MuscleID = "hamstrings"
	RearDelt   MuscleID = "rear-delt"
	Glutes     MuscleID = "glutes"
	Calves     MuscleID = "calves"
)

// Side is the body view a muscle is drawn on.
type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// MuscleInfo is a catalog entry.
type MuscleInfo struct {
	ID   MuscleID
	Name string
	Side Side
}

// catalog is ordered front view first, then back view.
var catalog = []MuscleInfo{
	{ID: Chest, Name: "Chest", Side: Front},
	{ID: Abs, Name: "Abs", Side: Front},
	{ID: Biceps, Name: "Biceps", Side: Front},
	{ID: Quads, Name: "Quads", Side: Front},
	{ID: FrontDelt, Name: "Front delts", Side: Front},
	{ID: Traps, Name: "Traps", Side: Back},
	{ID: Lats, Name: "Lats", Side: Back},
	{ID: Triceps, Name: "Triceps", Side: Back},
	{ID: Hamstrings, Name: "Hamstrings", Side: Back},
	{ID: RearDelt, Name: "Rear delts", Side: Back},
	{ID: Glutes, Name: "Glutes", Side: Back},
	{ID: Calves, Name: "Calves", Side: Back},
}

var catalogIndex = func() map[MuscleID]MuscleInfo {
	m := make(map[MuscleID]MuscleInfo, len(catalog))
	for _, info := range catalog {
		m[info.ID] = info
	}
	return m
}()

// Catalog returns a copy of the muscle catalog in display order.
func Catalog() []MuscleInfo {
	out := make([]MuscleInfo, len(catalog))
	copy(out, catalog)
	return out
}

// MuscleIDs returns every muscle id in display order.
func MuscleIDs() []MuscleID {
	ids := make([]MuscleID, len(catalog))
	for i, info := range catalog {
		ids[i] = info.ID
	}
	return ids
}

// LookupMuscle returns the catalog entry for id.
func LookupMuscle(id MuscleID) (MuscleInfo, bool) {
	info, ok := catalogIndex[id]
	return info, ok
}

// ParseMuscleID validates s against the catalog.
func ParseMuscleID(s string) (MuscleID, error) {
	id := MuscleID(s)
	if _, ok := catalogIndex[id]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownMuscle, s)
	}
	return id, nil
}

// IsValid reports whether id belongs to the catalog.
func (id MuscleID) IsValid() bool {
	_, ok := catalogIndex[id]
	return ok
}

func (id MuscleID) String() string {
	return string(id)
}

// Photo is an image attached to a muscle. Payload is opaque to the tracker.
type Photo struct {
	ID       string    `json:"id"`
	MuscleID MuscleID  `json:"muscleId"`
	TakenAt  time.Time `json:"takenAt"`
	Payload  string    `json:"payload"`
}

// MuscleRecord is the per-muscle state.
type MuscleRecord struct {
	ID   MuscleID `json:"id"`
	Name string   `json:"name"`

	// RepCount equals the number of workout events referencing the muscle.
	RepCount int `json:"repCount"`
	// LastActivityAt is the latest event timestamp; nil means never trained.
	LastActivityAt *time.Time `json:"lastActivityAt"`
	// GrowthScale is a display cache of growth.Scale(RepCount).
	GrowthScale float64 `json:"growthScale"`

	Photos []Photo `json:"photos"`
}

// NewMuscleRecord returns the untrained record for a catalog entry.
func NewMuscleRecord(info MuscleInfo) *MuscleRecord {
	return &MuscleRecord{
		ID:          info.ID,
		Name:        info.Name,
		GrowthScale: growth.Scale(0),
		Photos:      []Photo{},
	}
}

// SetRepCount updates the count (floored at zero) and refreshes the growth cache.
func (m *MuscleRecord) SetRepCount(n int) {
	if n < 0 {
		n = 0
	}
	m.RepCount = n
	m.GrowthScale = growth.Scale(n)
}

// Tier returns the rep-count tier of the muscle.
func (m *MuscleRecord) Tier() growth.Tier {
	return growth.TierFor(m.RepCount)
}

// LatestPhoto returns the most recently attached photo, if any.
func (m *MuscleRecord) LatestPhoto() (Photo, bool) {
	if len(m.Photos) == 0 {
		return Photo{}, false
	}
	return m.Photos[len(m.Photos)-1], true
}

// Clone returns a deep copy.
func (m *MuscleRecord) Clone() *MuscleRecord {
	c := *m
	if m.LastActivityAt != nil {
		ts := *m.LastActivityAt
		c.LastActivityAt = &ts
	}
	c.Photos = append([]Photo{}, m.Photos...)
	return &c
}
