// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Solar day/night rule, fit-to-data clock window, GeoJSON trip sources
// 0.2.0 - Control panel: scrubber with activity sparkline, custom location inputs
// 0.1.0 - Initial release: looping trail animation, day/night crossfade, headless frames
