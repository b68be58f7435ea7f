package geom

import "math"

// EarthRadiusMeters is R in the equirectangular projection formula.
const EarthRadiusMeters = 6_371_000

// ProjectLatLon converts a lat/lon pair to local meters using an
// equirectangular projection about a reference latitude/longitude
// (spec §4.2):
//
//	x = (lon-refLon)*pi/180*R*cos(refLat)
//	y = (lat-refLat)*pi/180*R
func ProjectLatLon(lat, lon, refLat, refLon float64) Point2D {
	const deg2rad = math.Pi / 180
	x := (lon - refLon) * deg2rad * EarthRadiusMeters * math.Cos(refLat*deg2rad)
	y := (lat - refLat) * deg2rad * EarthRadiusMeters
	return Point2D{X: x, Y: y}
}
