package scene

import "time"

// EventType represents the kind of notable scene change.
type EventType string

const (
	EventLoop        EventType = "LOOP"         // Clock wrapped to the window start
	EventDaybreak    EventType = "DAYBREAK"     // Crossfade flipped to day
	EventNightfall   EventType = "NIGHTFALL"    // Crossfade flipped to night
	EventFlyTo       EventType = "FLY_TO"       // Programmatic camera transition started
	EventFlyCanceled EventType = "FLY_CANCELED" // User interaction interrupted a fly-to
	EventModeChanged EventType = "MODE_CHANGED" // Day/night mode switched
	EventTripsLoaded EventType = "TRIPS_LOADED" // A trip source was (re)loaded
)

// DefaultMaxEvents bounds the event log.
const DefaultMaxEvents = 50

// Event is one entry in the scene's event log.
type Event struct {
	Type    EventType `json:"type"`
	At      time.Time `json:"at"`       // Wall clock
	SimTime float64   `json:"sim_time"` // Simulated seconds since epoch
	Detail  string    `json:"detail,omitempty"`
}

// eventLog is a fixed-size ring buffer.
type eventLog struct {
	events  []Event
	max     int
	writeAt int
}

func newEventLog(size int) *eventLog {
	if size <= 0 {
		size = DefaultMaxEvents
	}
	return &eventLog{
		events: make([]Event, 0, size),
		max:    size,
	}
}

func (l *eventLog) add(e Event) {
	if len(l.events) < l.max {
		l.events = append(l.events, e)
		return
	}
	l.events[l.writeAt] = e
	l.writeAt = (l.writeAt + 1) % l.max
}

// ordered returns events oldest first.
func (l *eventLog) ordered() []Event {
	if len(l.events) == 0 {
		return nil
	}

	if len(l.events) < l.max {
		result := make([]Event, len(l.events))
		copy(result, l.events)
		return result
	}

	result := make([]Event, l.max)
	for i := 0; i < l.max; i++ {
		result[i] = l.events[(l.writeAt+i)%l.max]
	}
	return result
}

// recent returns the last n events. A non-positive n returns nil.
func (l *eventLog) recent(n int) []Event {
	if n <= 0 {
		return nil
	}
	all := l.ordered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
