package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Agency struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Alerts      []uuid.UUID `json:"alerts,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type RegisterAgencyRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Coordinates []float64 `json:"coordinates" validate:"required,coordinates"`
}

func (r *RegisterAgencyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type UpdateLocationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"required,coordinates"`
}

type RegisterAgencyResponse struct {
	Agency *Agency `json:"agency"`
	Token  string  `json:"token"`
}

func ToCoordinates(v []float64) Coordinates {
	var c Coordinates
	copy(c[:], v)
	return c
}
