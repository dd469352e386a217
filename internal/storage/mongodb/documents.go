package mongodb

import (
	"time"

	"rescueconnect/internal/domain"

	"github.com/google/uuid"
)

// earthRadiusKM converts kilometres to radians for $centerSphere.
const earthRadiusKM = 6371.0088

type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func toGeoPoint(c domain.Coordinates) geoPoint {
	return geoPoint{Type: "Point", Coordinates: []float64{c.Lng(), c.Lat()}}
}

func (g geoPoint) coordinates() domain.Coordinates {
	return domain.ToCoordinates(g.Coordinates)
}

// Ids are stored as canonical uuid strings.
type agencyDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Location  geoPoint  `bson:"location"`
	Alerts    []string  `bson:"alerts"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type alertDoc struct {
	ID         string    `bson:"_id"`
	Title      string    `bson:"title"`
	Message    string    `bson:"message"`
	Severity   string    `bson:"severity"`
	Location   geoPoint  `bson:"location"`
	RadiusKM   float64   `bson:"radius_km"`
	CreatedBy  string    `bson:"created_by"`
	Status     string    `bson:"status"`
	Recipients []string  `bson:"recipients"`
	ReadBy     []string  `bson:"read_by"`
	ExpiresAt  time.Time `bson:"expires_at"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func newAlertDoc(a *domain.Alert) alertDoc {
	return alertDoc{
		ID:         a.ID.String(),
		Title:      a.Title,
		Message:    a.Message,
		Severity:   string(a.Severity),
		Location:   toGeoPoint(a.Coordinates),
		RadiusKM:   a.RadiusKM,
		CreatedBy:  a.CreatedBy.String(),
		Status:     string(a.Status),
		Recipients: idStrings(a.Recipients),
		ReadBy:     idStrings(a.ReadBy),
		ExpiresAt:  a.ExpiresAt,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (d alertDoc) toDomain() domain.Alert {
	return domain.Alert{
		ID:          parseID(d.ID),
		Title:       d.Title,
		Message:     d.Message,
		Severity:    domain.Severity(d.Severity),
		Coordinates: d.Location.coordinates(),
		RadiusKM:    d.RadiusKM,
		CreatedBy:   parseID(d.CreatedBy),
		Status:      domain.AlertStatus(d.Status),
		Recipients:  parseIDs(d.Recipients),
		ReadBy:      parseIDs(d.ReadBy),
		ExpiresAt:   d.ExpiresAt.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// parseIDs drops anything that is not a uuid.
func parseIDs(ss []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
