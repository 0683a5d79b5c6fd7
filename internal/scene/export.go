package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-trails/internal/trips"
	"github.com/litescript/ls-trails/internal/view"
)

// FrameExport is the JSON-serializable form of a Frame.
type FrameExport struct {
	Seq         uint64            `json:"seq"`
	SimTime     float64           `json:"sim_time"`
	Time        string            `json:"time"`
	Playing     bool              `json:"playing"`
	Progress    float64           `json:"progress"`
	View        view.State        `json:"view"`
	Phase       string            `json:"phase"`
	Transition  *TransitionExport `json:"transition,omitempty"`
	Crossfade   CrossfadeExport   `json:"crossfade"`
	Daylight    float64           `json:"daylight"`
	AutoMode    bool              `json:"auto_mode"`
	ActiveTrips int               `json:"active_trips"`
	Trails      []TrailExport     `json:"trails,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// TransitionExport describes a fly-to handed to the renderer.
type TransitionExport struct {
	DurationMS int64  `json:"duration_ms"`
	Easing     string `json:"easing"`
}

// CrossfadeExport carries the basemap opacity targets.
type CrossfadeExport struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
}

// TrailExport is one visible trail with its color.
type TrailExport struct {
	ID     string       `json:"id"`
	Color  [4]uint8     `json:"color"`
	Points [][3]float64 `json:"points"` // [lon, lat, age]
}

// ExportFrame converts a frame. Trails are included only when withTrails
// is set since they dominate the output size.
func ExportFrame(f Frame, withTrails bool) *FrameExport {
	export := &FrameExport{
		Seq:      f.Seq,
		SimTime:  f.Layer.CurrentTime,
		Time:     f.Time.Format(time.RFC3339),
		Playing:  f.Playing,
		Progress: f.Progress,
		View:     f.View.Camera(),
		Phase:    f.Phase.String(),
		Crossfade: CrossfadeExport{
			Day:   f.Crossfade.Day,
			Night: f.Crossfade.Night,
		},
		Daylight:    f.Daylight,
		AutoMode:    f.Mode.Auto,
		ActiveTrips: f.Layer.Trips.ActiveCount(f.Layer.CurrentTime, f.Layer.TrailLength),
	}

	if f.Transition != nil {
		export.Transition = &TransitionExport{
			DurationMS: f.Transition.Duration.Milliseconds(),
			Easing:     f.Transition.EasingName,
		}
	}
	if f.LoadErr != nil {
		export.Error = f.LoadErr.Error()
	}

	if withTrails && f.Layer.Trips != nil {
		export.Trails = exportTrails(f.Layer)
	}
	return export
}

func exportTrails(layer Layer) []TrailExport {
	var out []TrailExport
	for _, t := range layer.Trips.Trips {
		pts := t.TrailAt(layer.CurrentTime, layer.TrailLength)
		if len(pts) == 0 {
			continue
		}
		te := TrailExport{
			ID:     t.ID,
			Points: make([][3]float64, len(pts)),
		}
		if layer.Color != nil {
			te.Color = layer.Color(t.Quantity).Array()
		}
		for i, p := range pts {
			te.Points[i] = [3]float64{p.Lon, p.Lat, p.Age}
		}
		out = append(out, te)
	}
	return out
}

// WriteJSON writes the frame as a single JSON line, suitable for streaming.
func (e *FrameExport) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(e)
}

// WriteSummary writes a human-readable status block followed by recent
// events.
func WriteSummary(w io.Writer, f Frame, set *trips.Set, events []Event) {
	fmt.Fprintf(w, "Trails @ %s (frame %d)\n", f.Time.Format(time.RFC3339), f.Seq)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	state := "paused"
	if f.Playing {
		state = "playing"
	}
	mode := "auto"
	if !f.Mode.Auto {
		mode = "manual"
	}
	basemap := "night"
	if f.Crossfade.Day == 1 {
		basemap = "day"
	}

	fmt.Fprintf(w, "%-12s %s (%.1f%% through window)\n", "Clock", state, f.Progress*100)
	fmt.Fprintf(w, "%-12s %s, %s basemap, daylight %.2f\n", "Day/Night", mode, basemap, f.Daylight)
	fmt.Fprintf(w, "%-12s %s [%s]\n", "Camera", f.View.Camera(), f.Phase)
	fmt.Fprintf(w, "%-12s %d loaded, %d visible\n", "Trips", set.Len(),
		set.ActiveCount(f.Layer.CurrentTime, f.Layer.TrailLength))
	if f.LoadErr != nil {
		fmt.Fprintf(w, "%-12s %v\n", "Load error", f.LoadErr)
	}

	if len(events) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-13s %-20s %s\n", "Event", "Simulated", "Detail")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, e := range events {
		sim := time.Unix(int64(e.SimTime), 0).In(f.Time.Location()).Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%-13s %-20s %s\n", e.Type, sim, e.Detail)
	}
}
