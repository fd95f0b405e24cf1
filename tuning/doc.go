// Package tuning maps detected frequencies onto the strings of a six-string
// tuning and tracks a tuned/sharp/flat state per string.
package tuning
