package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertInactive AlertStatus = "inactive"
)

// Coordinates is a [longitude, latitude] pair, GeoJSON order.
type Coordinates [2]float64

func (c Coordinates) Lng() float64 { return c[0] }
func (c Coordinates) Lat() float64 { return c[1] }

type Alert struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Severity    Severity    `json:"severity"`
	Coordinates Coordinates `json:"coordinates"`
	RadiusKM    float64     `json:"radius"`
	CreatedBy   uuid.UUID   `json:"createdBy"`
	Status      AlertStatus `json:"status"`
	Recipients  []uuid.UUID `json:"recipients"`
	ReadBy      []uuid.UUID `json:"readBy"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (a *Alert) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

type AgencyRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AlertView is an alert as seen by a recipient.
type AlertView struct {
	Alert
	Creator AgencyRef `json:"creator"`
}

// SentAlertView is an alert as seen by its creator, recipients resolved to names.
type SentAlertView struct {
	Alert
	Recipients []AgencyRef `json:"recipients"`
}
