// Package geo provides geodesic distance and coarse location utilities
// used by the matching engine.
package geo

import (
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distance.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between two points in
// kilometers. The function is symmetric and returns 0 for identical points.
//
// Parameters:
//   - a: first coordinate pair
//   - b: second coordinate pair
//
// Returns the distance in kilometers (always >= 0).
func HaversineKm(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Guard against floating point drift pushing h past 1, which would
	// make Sqrt/Asin return NaN for antipodal points.
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// CoarsePrecision is the geohash precision used for coarse location labels
// attached to score breakdowns. Six characters is approximately ±0.61 km,
// coarse enough not to pinpoint an exact office address.
const CoarsePrecision = 6

// base32 is the geohash base32 alphabet.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// validGeohashChars is a lookup map for valid base32 characters used in
// geohashes. Geohash uses a custom base32 alphabet excluding 'a', 'i',
// 'l', and 'o'.
var validGeohashChars = map[rune]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'b': true, 'c': true, 'd': true, 'e': true, 'f': true,
	'g': true, 'h': true, 'j': true, 'k': true, 'm': true,
	'n': true, 'p': true, 'q': true, 'r': true, 's': true,
	't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// Encode encodes a point into a geohash string with the specified precision.
// Uses the standard geohash algorithm with base32 encoding.
func Encode(p Point, precision int) string {
	if precision < 1 {
		precision = CoarsePrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var geohash strings.Builder
	geohash.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for geohash.Len() < precision {
		if even {
			mid := (lngRange[0] + lngRange[1]) / 2
			if p.Lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if p.Lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			geohash.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return geohash.String()
}

// ValidGeohash reports whether the string contains only geohash base32
// characters (after lowercasing). Empty strings are not valid.
func ValidGeohash(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range strings.ToLower(s) {
		if !validGeohashChars[c] {
			return false
		}
	}
	return true
}
