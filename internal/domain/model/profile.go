package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
)

type Profile struct {
	ID          uuid.UUID        `json:"id"`
	DisplayName string           `json:"display_name"`
	Bio         string           `json:"bio"`
	Location    string           `json:"location"`
	LocationLat *float64         `json:"location_lat,omitempty"`
	LocationLon *float64         `json:"location_lon,omitempty"`
	LookingFor  enums.LookingFor `json:"looking_for"`
	Skills      []string         `json:"skills"`
	Interests   []string         `json:"interests"`
	AvatarKey   string           `json:"-"`
	AvatarURL   *string          `json:"avatar_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p Profile) HasCoordinates() bool {
	return p.LocationLat != nil && p.LocationLon != nil
}
