package domain

import (
	"strings"
	"time"
)

type CreateAlertRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Message     string    `json:"message" validate:"required,max=5000"`
	Severity    Severity  `json:"severity" validate:"required,oneof=low medium high critical"`
	Coordinates []float64 `json:"coordinates" validate:"required,coordinates"`
	Radius      float64   `json:"radius" validate:"required,radius_km"`
	ExpiresAt   time.Time `json:"expiresAt" validate:"required,future"`
	Recipients  []string  `json:"recipients" validate:"omitempty,dive,uuid"`
}

// Normalize trims free text so whitespace-only values fail "required".
func (r *CreateAlertRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
	r.Severity = Severity(strings.ToLower(strings.TrimSpace(string(r.Severity))))
}

type AlertList struct {
	Alerts []AlertView `json:"alerts"`
}

type SentAlertList struct {
	Alerts []SentAlertView `json:"alerts"`
}

type UnreadCount struct {
	Count int64 `json:"count"`
}
