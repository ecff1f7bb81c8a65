// Package geo holds the great-circle helpers shared by planning and tracking.
package geo

import "math"

const EarthRadiusM = 6371000.0

// MaxInclineDeg bounds Incline so single noisy altitude fixes don't produce
// vertical walls.
const MaxInclineDeg = 45.0

// Point is a WGS84 position. Missing coordinates are NaN; use Unknown to
// build one.
type Point struct {
	Lat  float64
	Lon  float64
	AltM float64
}

func Unknown() Point {
	return Point{Lat: math.NaN(), Lon: math.NaN()}
}

// Valid reports whether p carries a usable latitude/longitude.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance in meters, or +Inf when either
// point has no coordinates.
func Distance(a, b Point) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// Bearing returns the initial bearing from a to b in degrees, [0, 360).
func Bearing(a, b Point) float64 {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := degrees(math.Atan2(y, x))
	deg = math.Mod(deg+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Incline returns the signed slope from a to b in degrees, clamped to
// [-MaxInclineDeg, MaxInclineDeg]. Positive means b is higher.
func Incline(a, b Point) float64 {
	d := Distance(a, b)
	if math.IsInf(d, 0) {
		return 0
	}
	deg := degrees(math.Atan2(b.AltM-a.AltM, d))
	return clamp(deg, -MaxInclineDeg, MaxInclineDeg)
}

// HaversineKm is Distance in kilometers over bare coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Distance(Point{Lat: lat1, Lon: lon1}, Point{Lat: lat2, Lon: lon2}) / 1000
}

func radians(d float64) float64 { return d * math.Pi / 180 }

func degrees(r float64) float64 { return r * 180 / math.Pi }

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
