package geom

import (
	"encoding/json"
	"fmt"
)

// geoJSONFeatureCollection and friends model just enough of the GeoJSON
// spec to read Polygon features: coordinates are [lon, lat] pairs, rings
// are arrays of coordinates, and a Polygon's first ring is the outer ring
// (the only one this loader reads — holes are not modeled).
type geoJSONFeatureCollection struct {
	Type     string            `json:"type"`
	Features []geoJSONFeature  `json:"features"`
}

type geoJSONFeature struct {
	Type       string              `json:"type"`
	Properties map[string]string   `json:"properties"`
	Geometry   geoJSONGeometry     `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates [][][2]float64  `json:"coordinates"`
}

// duplicateVertexEpsilon is the distance threshold below which a ring's
// closing vertex is treated as a duplicate of its first vertex.
const duplicateVertexEpsilon = 0.01

// LoadGeoJSON parses a FeatureCollection of Polygon features into
// Buildings, projecting lon/lat to local meters about (refLat, refLon).
// If refLat/refLon are both zero, the dataset's centroid is used instead
// (spec §6). Only the outer ring of each polygon is read; a closing
// vertex that duplicates the first within 0.01m post-projection is
// dropped. Polygons that end up with fewer than 3 unique vertices are
// rejected (not included in the result) rather than causing a load error,
// matching the "never propagate geometry invariant violations" policy of
// spec §7.
func LoadGeoJSON(data []byte, refLat, refLon float64) (*Environment, error) {
	var fc geoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	if refLat == 0 && refLon == 0 {
		refLat, refLon = centroid(fc)
	}

	var buildings []*Building
	for i, feat := range fc.Features {
		if feat.Geometry.Type != "Polygon" || len(feat.Geometry.Coordinates) == 0 {
			continue
		}
		outer := feat.Geometry.Coordinates[0]
		if len(outer) == 0 {
			continue
		}

		projected := make([]Point2D, 0, len(outer))
		for _, coord := range outer {
			lon, lat := coord[0], coord[1]
			projected = append(projected, ProjectLatLon(lat, lon, refLat, refLon))
		}

		if len(projected) > 1 {
			first, last := projected[0], projected[len(projected)-1]
			if first.Distance(last) < duplicateVertexEpsilon {
				projected = projected[:len(projected)-1]
			}
		}

		if !IsValidPolygon(projected) {
			continue
		}

		id := feat.Properties["id"]
		if id == "" {
			id = fmt.Sprintf("building-%d", i)
		}
		material := feat.Properties["material"]

		bld := NewBuilding(id, material, projected, feat.Properties)
		buildings = append(buildings, &bld)
	}

	return NewEnvironment(buildings), nil
}

func centroid(fc geoJSONFeatureCollection) (lat, lon float64) {
	var sumLat, sumLon float64
	var count int
	for _, feat := range fc.Features {
		for _, ring := range feat.Geometry.Coordinates {
			for _, coord := range ring {
				sumLon += coord[0]
				sumLat += coord[1]
				count++
			}
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sumLat / float64(count), sumLon / float64(count)
}
