// Package engine owns the tuner and practice-player sessions.
//
// The tuner path opens a capture Source, runs a detection loop at a fixed
// cadence and publishes a Reading per tick. The player path drives a
// transport.Scheduler over a synthesizer. Both paths feed the same analysis
// snapshots and never share mutable state.
package engine
