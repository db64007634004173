package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Point is a WGS-84 longitude/latitude pair backed by a PostGIS
// geometry(Point,4326) column. At the API boundary it is exchanged as a
// GeoJSON Point; the database representation never leaves this type.
type Point struct {
	Lon float64
	Lat float64
}

// GormDataType tells GORM which column type to create during migration.
func (Point) GormDataType() string {
	return "geometry(Point,4326)"
}

// GormValue writes the point through ST_MakePoint so PostGIS owns the
// geometry encoding.
func (p Point) GormValue(_ context.Context, _ *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "ST_SetSRID(ST_MakePoint(?, ?), 4326)",
		Vars: []interface{}{p.Lon, p.Lat},
	}
}

// Scan decodes the hex-encoded EWKB value PostGIS returns for geometry
// columns.
func (p *Point) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Point", value)
	}

	g, err := ewkbhex.Decode(s)
	if err != nil {
		return fmt.Errorf("models: decoding geometry: %w", err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return fmt.Errorf("models: expected point geometry, got %T", g)
	}
	p.Lon = pt.X()
	p.Lat = pt.Y()
	return nil
}

// EWKBHex returns the hex EWKB encoding of the point, as PostGIS would
// store it. Used by tests and tooling that bypass GormValue.
func (p Point) EWKBHex() (string, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(4326)
	return ewkbhex.Encode(pt, ewkbhex.NDR)
}

// geoJSONPoint is the wire form of a Point.
type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// MarshalJSON renders the point as GeoJSON: {"type":"Point","coordinates":[lon,lat]}.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: []float64{p.Lon, p.Lat},
	})
}

// UnmarshalJSON parses a GeoJSON Point. Coordinate order is (longitude,
// latitude) per the GeoJSON spec.
func (p *Point) UnmarshalJSON(data []byte) error {
	var g geoJSONPoint
	if err := json.Unmarshal(data, &g); err != nil {
		return err
	}
	if g.Type != "Point" {
		return fmt.Errorf("models: location must be a GeoJSON Point, got %q", g.Type)
	}
	if len(g.Coordinates) != 2 {
		return fmt.Errorf("models: location coordinates must be [lon, lat]")
	}
	p.Lon = g.Coordinates[0]
	p.Lat = g.Coordinates[1]
	return nil
}

var _ schema.GormDataTypeInterface = Point{}
