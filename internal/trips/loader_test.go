package trips

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const tripsJSON = `[
  {"id": 1, "coordinates": [[2.0, 48.0], [2.1, 48.1, 35.0]], "timestamps": [100, 200], "quantity": 4},
  {"path": [[2.2, 48.2], [2.3, 48.3]], "timestamps": [150, 300], "quantity": 12},
  {"coordinates": [[2.0, 48.0]], "timestamps": [100, 200], "quantity": 1}
]`

const tripsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "bus-7",
      "geometry": {"type": "LineString", "coordinates": [[2.0, 48.0], [2.1, 48.1]]},
      "properties": {"timestamps": [100, 200], "quantity": 9}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.0, 48.0]},
      "properties": {}
    }
  ]
}`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"  [ ]", FormatTripsJSON, false},
		{"\n{\"type\":\"FeatureCollection\"}", FormatGeoJSON, false},
		{"", "", true},
		{"trips", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeTripsJSON(t *testing.T) {
	all, err := Decode([]byte(tripsJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("decoded %d trips, want 3", len(all))
	}

	if all[0].ID != "1" {
		t.Errorf("ID = %q, want 1", all[0].ID)
	}
	if all[0].Path[1] != [2]float64{2.1, 48.1} {
		t.Errorf("altitude should be dropped, got %v", all[0].Path[1])
	}
	if all[1].ID != "trip-1" {
		t.Errorf("ID = %q, want trip-1", all[1].ID)
	}
	if len(all[1].Path) != 2 {
		t.Errorf("path alias not honored: %v", all[1].Path)
	}

	set, dropped := NewSet(all)
	if set.Len() != 2 || dropped != 1 {
		t.Errorf("NewSet() = %d kept, %d dropped; want 2, 1", set.Len(), dropped)
	}
}

func TestDecodeGeoJSON(t *testing.T) {
	all, err := Decode([]byte(tripsGeoJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("decoded %d trips, want 1 (points skipped)", len(all))
	}

	tr := all[0]
	if tr.ID != "bus-7" {
		t.Errorf("ID = %q, want bus-7", tr.ID)
	}
	if tr.Quantity != 9 {
		t.Errorf("Quantity = %v, want 9", tr.Quantity)
	}
	if len(tr.Timestamps) != 2 || tr.Timestamps[1] != 200 {
		t.Errorf("Timestamps = %v, want [100 200]", tr.Timestamps)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte(`[{"coordinates": "nope"}]`)); err == nil {
		t.Error("expected error for malformed trips JSON")
	}
	if _, err := Decode([]byte(`{"type": "Feature"`)); err == nil {
		t.Error("expected error for truncated GeoJSON")
	}
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.json")
	if err := os.WriteFile(path, []byte(tripsJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	result := NewLoader().Load(context.Background(), path)
	if result.Error != nil {
		t.Fatalf("Load() error = %v", result.Error)
	}
	if result.Set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", result.Set.Len())
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	result := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if result.Error == nil {
		t.Fatal("expected error for missing file")
	}
	if result.Set == nil || result.Set.Len() != 0 {
		t.Error("failed load should yield an empty, non-nil set")
	}
}

func TestLoader_NoUsableTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"coordinates": [[0, 0]], "timestamps": []}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	result := NewLoader().Load(context.Background(), path)
	if !errors.Is(result.Error, ErrNoTrips) {
		t.Errorf("Error = %v, want ErrNoTrips", result.Error)
	}
}

func TestLoader_HTTP(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(tripsGeoJSON))
	}))
	defer srv.Close()

	loader := NewLoader(WithUserAgent("trails-test"), WithTimeout(5*time.Second))
	result := loader.Load(context.Background(), srv.URL)
	if result.Error != nil {
		t.Fatalf("Load() error = %v", result.Error)
	}
	if result.Set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", result.Set.Len())
	}
	if gotUA != "trails-test" {
		t.Errorf("User-Agent = %q, want trails-test", gotUA)
	}
}

func TestLoader_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	result := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL)
	if result.Error == nil {
		t.Fatal("expected error for 404")
	}
}

func TestLoader_EmptySource(t *testing.T) {
	if result := NewLoader().Load(context.Background(), ""); result.Error == nil {
		t.Error("expected error for empty source")
	}
}
