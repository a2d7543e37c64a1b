package models

import "time"

// DefaultSource labels records whose source id carries no catalog prefix.
const DefaultSource = "EMSC"

// Event is one normalized earthquake record. Events are created by the
// response parser and never mutated afterwards.
type Event struct {
	ID            string    `json:"id"`
	Time          time.Time `json:"time"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Depth         float64   `json:"depth"`
	Magnitude     float64   `json:"magnitude"`
	MagnitudeType string    `json:"magnitude_type,omitempty"`
	Region        string    `json:"region,omitempty"`
	Source        string    `json:"source"`
}
