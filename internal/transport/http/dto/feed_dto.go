package dto

import "github.com/Fumiyasu01/matching-app/internal/domain/model"

type FeedResponse struct {
	Items []model.Profile `json:"items"`
}
