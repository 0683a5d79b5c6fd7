package daynight

import "fmt"

// Rule selects how daytime is resolved in auto mode.
type Rule int

const (
	RuleHours Rule = iota // Fixed local-hour window
	RuleSolar             // Sun above the horizon at the camera center
)

// String returns the rule name used in configuration.
func (r Rule) String() string {
	switch r {
	case RuleHours:
		return "hours"
	case RuleSolar:
		return "solar"
	default:
		return "unknown"
	}
}

// ParseRule parses a rule name, defaulting to RuleHours.
func ParseRule(s string) Rule {
	switch s {
	case "solar":
		return RuleSolar
	default:
		return RuleHours
	}
}

// Mode is the user-facing day/night setting. When Auto is false,
// ManualDaytime is authoritative and the resolver is bypassed.
type Mode struct {
	Auto          bool `json:"auto"`
	ManualDaytime bool `json:"manual_daytime"`
}

// Controller owns the day/night mode, the cached resolved value and the
// crossfade targets.
type Controller struct {
	resolver  Resolver
	rule      Rule
	mode      Mode
	tracker   Tracker
	crossfade Crossfade
}

// NewController starts in auto mode showing the night basemap until the
// first frame resolves.
func NewController(resolver Resolver, rule Rule) *Controller {
	return &Controller{
		resolver:  resolver,
		rule:      rule,
		mode:      Mode{Auto: true, ManualDaytime: true},
		crossfade: CrossfadeFor(false),
	}
}

// Frame resolves daytime for simulated time t at the given camera center
// and flips the crossfade targets if the value changed. It returns Changed
// only when the targets actually moved, so a first observation that agrees
// with the current basemap is Idle. In manual mode it does nothing.
func (c *Controller) Frame(t, lat, lon float64) Transition {
	if !c.mode.Auto {
		return Idle
	}
	isDay := c.resolve(t, lat, lon)
	if c.tracker.Observe(isDay) == Idle {
		return Idle
	}
	next := CrossfadeFor(isDay)
	if next == c.crossfade {
		return Idle
	}
	c.crossfade = next
	return Changed
}

func (c *Controller) resolve(t, lat, lon float64) bool {
	if c.rule == RuleSolar {
		return SolarFactor(t, lat, lon) >= 0.5
	}
	return c.resolver.IsDaytime(t)
}

// Factor returns the continuous daylight factor for the active rule.
func (c *Controller) Factor(t, lat, lon float64) float64 {
	if c.rule == RuleSolar {
		return SolarFactor(t, lat, lon)
	}
	return c.resolver.Factor(t)
}

// SetAuto switches between automatic and manual mode. Entering manual mode
// applies the manual choice immediately; returning to auto forgets the
// cached value so the next frame re-resolves.
func (c *Controller) SetAuto(auto bool) {
	if c.mode.Auto == auto {
		return
	}
	c.mode.Auto = auto
	if auto {
		c.tracker.Reset()
		return
	}
	c.crossfade = CrossfadeFor(c.mode.ManualDaytime)
}

// ToggleAuto flips the mode and returns the new Auto value.
func (c *Controller) ToggleAuto() bool {
	c.SetAuto(!c.mode.Auto)
	return c.mode.Auto
}

// ToggleManual flips the manual day/night choice. It only has an effect in
// manual mode; the return value reports whether anything changed.
func (c *Controller) ToggleManual() bool {
	if c.mode.Auto {
		return false
	}
	c.mode.ManualDaytime = !c.mode.ManualDaytime
	c.crossfade = CrossfadeFor(c.mode.ManualDaytime)
	return true
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Crossfade returns the current opacity targets.
func (c *Controller) Crossfade() Crossfade {
	return c.crossfade
}

// IsDaytime reports which basemap is currently targeted.
func (c *Controller) IsDaytime() bool {
	return c.crossfade.Day == 1
}

func (c *Controller) String() string {
	if c.mode.Auto {
		return fmt.Sprintf("auto(%s) day=%.0f night=%.0f", c.rule, c.crossfade.Day, c.crossfade.Night)
	}
	return fmt.Sprintf("manual day=%.0f night=%.0f", c.crossfade.Day, c.crossfade.Night)
}
