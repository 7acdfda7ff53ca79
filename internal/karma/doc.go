// Package karma implements the reputation-counter core: recognizing karma
// expressions in chat messages, suppressing repeated updates from the same
// actor inside a time window, and applying counter updates against the
// persistence port.
package karma
