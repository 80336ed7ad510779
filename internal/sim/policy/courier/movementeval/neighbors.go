package movementeval

import "github.com/mdrp-sim/go-engine/internal/sim/objects"

// cellSize is the geohash-like grid cell edge length in degrees used
// to pick a neighboring cell to reposition to.
const cellSize = 0.01

var compassOffsets = [8][2]float64{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// NeighborsPolicy relocates an idle courier to one of the eight
// geohash-style neighboring cells of its current location, picked
// deterministically from the cell's own coordinates (no external
// randomness, so repeated runs are idempotent per spec.md §8 property
// 6) — ported from NeighborsMoveEvalPolicy, using plain degree-offset
// arithmetic instead of a geohash library (see DESIGN.md stdlib
// justification).
type NeighborsPolicy struct{}

func (NeighborsPolicy) Execute(current objects.Location) *objects.Location {
	cellLat := int64(current.Lat / cellSize)
	cellLng := int64(current.Lng / cellSize)

	idx := int((cellLat*31 + cellLng*17) % 8)
	if idx < 0 {
		idx += 8
	}

	offset := compassOffsets[idx]
	dest := objects.Location{
		Lat: current.Lat + offset[0]*cellSize,
		Lng: current.Lng + offset[1]*cellSize,
	}
	return &dest
}
