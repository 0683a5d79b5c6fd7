package trips

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Format identifies a trip document encoding.
type Format string

const (
	FormatTripsJSON Format = "trips-json" // Array of {coordinates, timestamps, quantity}
	FormatGeoJSON   Format = "geojson"    // FeatureCollection of LineStrings
)

// DetectFormat guesses the encoding from the first non-space byte.
func DetectFormat(data []byte) (Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", errors.New("empty document")
	}
	switch trimmed[0] {
	case '[':
		return FormatTripsJSON, nil
	case '{':
		return FormatGeoJSON, nil
	default:
		return "", fmt.Errorf("unrecognized document starting with %q", trimmed[0])
	}
}

// Decode parses data in whichever supported format it is in.
func Decode(data []byte) ([]Trip, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGeoJSON:
		return DecodeGeoJSON(data)
	default:
		return DecodeTripsJSON(data)
	}
}

// rawTrip mirrors the trips.json layout; coordinates may carry a third
// (altitude) element which is ignored.
type rawTrip struct {
	ID          any         `json:"id"`
	Coordinates [][]float64 `json:"coordinates"`
	Path        [][]float64 `json:"path"`
	Timestamps  []float64   `json:"timestamps"`
	Quantity    float64     `json:"quantity"`
}

// DecodeTripsJSON parses a JSON array of trip records.
func DecodeTripsJSON(data []byte) ([]Trip, error) {
	var raw []rawTrip
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode trips JSON: %w", err)
	}

	out := make([]Trip, 0, len(raw))
	for i, r := range raw {
		coords := r.Coordinates
		if coords == nil {
			coords = r.Path
		}
		out = append(out, Trip{
			ID:         idString(r.ID, i),
			Path:       toPath(coords),
			Timestamps: r.Timestamps,
			Quantity:   r.Quantity,
		})
	}
	return out, nil
}

// DecodeGeoJSON parses a FeatureCollection whose LineString features carry
// "timestamps" and "quantity" properties.
func DecodeGeoJSON(data []byte) ([]Trip, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode GeoJSON: %w", err)
	}

	out := make([]Trip, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsLineString() {
			continue
		}
		quantity, _ := f.PropertyFloat64("quantity")
		out = append(out, Trip{
			ID:         idString(f.ID, i),
			Path:       toPath(f.Geometry.LineString),
			Timestamps: floatSlice(f.Properties["timestamps"]),
			Quantity:   quantity,
		})
	}
	return out, nil
}

// toPath returns nil if any coordinate has fewer than two elements, which
// Validate then rejects as an empty path.
func toPath(coords [][]float64) [][2]float64 {
	path := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil
		}
		path = append(path, [2]float64{c[0], c[1]})
	}
	return path
}

func floatSlice(v any) []float64 {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

func idString(v any, index int) string {
	switch id := v.(type) {
	case nil:
		return fmt.Sprintf("trip-%d", index)
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
