package analysis

import (
	"math"

	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

// ActivityThresholds are the speed bounds (m/s) separating still, walking and vehicle
type ActivityThresholds struct {
	StillSpeedMax   float64 // speed < StillSpeedMax is still
	VehicleSpeedMin float64 // speed >= VehicleSpeedMin is vehicle
}

// DefaultActivityThresholds returns 1 m/s and 5 m/s
func DefaultActivityThresholds() ActivityThresholds {
	return ActivityThresholds{StillSpeedMax: 1, VehicleSpeedMin: 5}
}

// ClassifyActivity derives the movement class from a reported speed.
// A missing or non-finite speed counts as still.
func ClassifyActivity(speed *float64, th ActivityThresholds) models.ActivityType {
	if speed == nil || math.IsNaN(*speed) || math.IsInf(*speed, 0) {
		return models.ActivityStill
	}
	switch v := *speed; {
	case v < th.StillSpeedMax:
		return models.ActivityStill
	case v < th.VehicleSpeedMin:
		return models.ActivityWalking
	default:
		return models.ActivityVehicle
	}
}
