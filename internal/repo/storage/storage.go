// Package storage holds errors and result types shared by every
// storage backend so services can stay backend-agnostic.
package storage

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrSlotNotFound    = errors.New("availability slot not found")
	ErrDuplicateSwipe  = errors.New("swipe already recorded")
)

// SwipeOutcome is the result of atomically recording a swipe.
// Match is non-nil only when the swipe completed a reciprocal like,
// either by creating the match or by observing the one a concurrent
// swipe created.
type SwipeOutcome struct {
	Swipe *model.Swipe
	Match *model.Match
}

// MatchSummary is a match joined with what the list endpoint needs
// about the other participant and the conversation state.
type MatchSummary struct {
	Match       model.Match
	Partner     model.Profile
	LastMessage *model.Message
	UnreadCount int
}

// SendResult distinguishes a freshly stored message from an
// idempotent replay of a previously stored one.
type SendResult struct {
	Message  model.Message
	Replayed bool
}

// FeedQuery is the input of the discovery page, shared by every
// backend. Viewer coordinates are carried separately from the filters
// because the distance filter only activates when both are present.
type FeedQuery struct {
	ViewerID  uuid.UUID
	ViewerLat *float64
	ViewerLon *float64
	Filters   model.DiscoverFilters
	Limit     int
}
