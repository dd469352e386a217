package domain

import (
	"time"

	"github.com/google/uuid"
)

// DistributionJob carries everything fan-out needs, so workers never reread the alert.
type DistributionJob struct {
	AlertID     uuid.UUID   `json:"alert_id"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	Coordinates Coordinates `json:"coordinates"`
	RadiusKM    float64     `json:"radius_km"`
	Recipients  []uuid.UUID `json:"recipients"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
}

func NewDistributionJob(a *Alert) DistributionJob {
	return DistributionJob{
		AlertID:     a.ID,
		CreatedBy:   a.CreatedBy,
		Coordinates: a.Coordinates,
		RadiusKM:    a.RadiusKM,
		Recipients:  a.Recipients,
		EnqueuedAt:  time.Now().UTC(),
	}
}

type DistributionResult struct {
	AlertID    uuid.UUID
	Nearby     int
	Recipients int
	Added      int64
}
