package dto

import "github.com/Fumiyasu01/matching-app/internal/domain/model"

type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name"`
	Bio         string   `json:"bio"`
	Location    string   `json:"location"`
	LookingFor  string   `json:"looking_for"`
	Skills      []string `json:"skills"`
	Interests   []string `json:"interests"`
	AvatarKey   string   `json:"avatar_key,omitempty"`
}

type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SlotRequest carries one availability slot. Date uses the 2006-01-02
// form; status defaults to open when omitted.
type SlotRequest struct {
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
	TimeDetail  string `json:"time_detail,omitempty"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
	Area        string `json:"area,omitempty"`
	Status      string `json:"status,omitempty"`
}

type SlotsResponse struct {
	Items []model.AvailabilitySlot `json:"items"`
}
