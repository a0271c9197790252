// Package geo implements the privacy offset applied to catch positions
// before they are uploaded, plus the great-circle distance used to verify it.
package geo

import (
	"hash/fnv"
	"math"
)

const (
	// EarthRadiusM is the mean Earth radius in meters.
	EarthRadiusM = 6371000.0

	// FuzzRadiusM bounds the published offset: roughly one mile.
	FuzzRadiusM = 1609.0
)

// unitFraction hashes s into (0,1). FNV-64a is stable across runs and
// platforms, which makes the whole transform deterministic per input.
func unitFraction(s string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	// Top 53 bits fit a float64 mantissa exactly; +0.5 keeps the result
	// strictly inside (0,1) so the offset distance is never zero.
	return (float64(h.Sum64()>>11) + 0.5) / float64(uint64(1)<<53)
}

// Fuzz maps an exact position to a deterministically offset one within
// FuzzRadiusM. The same (lat, lng, id) always yields the same output.
//
// The null coordinate (0,0) means "no location" and is returned unchanged.
//
// The offset distance is uniform over area (square root of the hashed
// fraction), not uniform over radius, so points do not cluster near the
// original. The new point is projected along a great circle, which stays
// correct near the poles and the antimeridian.
func Fuzz(lat, lng float64, id string) (float64, float64) {
	if lat == 0 && lng == 0 {
		return lat, lng
	}

	bearing := 2 * math.Pi * unitFraction(id+":angle")
	distance := FuzzRadiusM * math.Sqrt(unitFraction(id+":dist"))

	phi1 := lat * math.Pi / 180
	lambda1 := lng * math.Pi / 180
	delta := distance / EarthRadiusM

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(bearing))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(bearing)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	outLat := phi2 * 180 / math.Pi
	outLng := lambda2 * 180 / math.Pi

	// Normalize longitude to [-180, 180).
	outLng = math.Mod(outLng+540, 360) - 180

	return outLat, outLng
}

// Distance returns the haversine great-circle distance between two
// positions, in meters.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return EarthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
