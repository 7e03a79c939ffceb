package postgres

import (
	"math"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/mmcloughlin/geohash"
)

// StoragePrecision is the geohash length stored with every post (about 5m cells).
const StoragePrecision uint = 9

// cellSizesKm holds the approximate {width, height} of a geohash cell at the
// equator, indexed by precision.
var cellSizesKm = [...][2]float64{
	1: {5009.4, 4992.6},
	2: {1252.3, 624.1},
	3: {156.5, 156.0},
	4: {39.1, 19.5},
	5: {4.89, 4.87},
	6: {1.22, 0.61},
	7: {0.153, 0.152},
	8: {0.0382, 0.019},
	9: {0.00477, 0.00476},
}

// EncodeGeohash returns the stored geohash for c.
func EncodeGeohash(c domain.Coordinates) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, StoragePrecision)
}

// searchPrecision returns the longest geohash whose cells are at least radiusKm
// across in both directions at the given latitude, so the 3x3 block around the
// center cell covers the whole search circle.
func searchPrecision(latitude, radiusKm float64) uint {
	shrink := math.Cos(latitude * math.Pi / 180)
	for p := StoragePrecision; p >= 1; p-- {
		width := cellSizesKm[p][0] * shrink
		height := cellSizesKm[p][1]
		if math.Min(width, height) >= radiusKm {
			return p
		}
	}
	return 1
}

// searchCells returns the center cell and its neighbours at the precision
// suited to radiusKm, without duplicates.
func searchCells(center domain.Coordinates, radiusKm float64) (uint, []string) {
	precision := searchPrecision(center.Latitude, radiusKm)
	hash := geohash.EncodeWithPrecision(center.Latitude, center.Longitude, precision)

	cells := []string{hash}
	seen := map[string]struct{}{hash: {}}
	for _, n := range geohash.Neighbors(hash) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		cells = append(cells, n)
	}
	return precision, cells
}
