package daynight

// Crossfade is the complementary opacity pair for the day and night
// basemaps. Day + Night is always exactly 1.
type Crossfade struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
}

// CrossfadeFor returns the target pair for a daytime flag.
func CrossfadeFor(isDaytime bool) Crossfade {
	if isDaytime {
		return Crossfade{Day: 1, Night: 0}
	}
	return Crossfade{Day: 0, Night: 1}
}

// Transition tags the outcome of observing a new resolved value.
type Transition int

const (
	Idle    Transition = iota // Value unchanged, nothing to do
	Changed                   // Value flipped, targets must be updated
)

func (t Transition) String() string {
	if t == Changed {
		return "changed"
	}
	return "idle"
}

// Tracker caches the previous resolved daytime value so targets are only
// touched when it actually flips.
type Tracker struct {
	known bool
	day   bool
}

// Observe records isDay and reports whether it differs from the cached
// value. The first observation is always Changed.
func (tr *Tracker) Observe(isDay bool) Transition {
	if tr.known && tr.day == isDay {
		return Idle
	}
	tr.known = true
	tr.day = isDay
	return Changed
}

// Reset forgets the cached value.
func (tr *Tracker) Reset() {
	tr.known = false
	tr.day = false
}
