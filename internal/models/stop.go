package models

import "time"

// StopCluster is a run of consecutive samples judged stationary.
// Derived on demand, never persisted.
type StopCluster struct {
	SubjectID       string    `json:"subjectId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Latitude        float64   `json:"latitude"`  // First sample of the cluster
	Longitude       float64   `json:"longitude"` // First sample of the cluster
	DurationMinutes float64   `json:"durationMinutes"`
	SampleCount     int       `json:"sampleCount"`
	RadiusMeters    float64   `json:"radiusMeters"` // Dispersion around the cluster centroid
}
