package model

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID        uuid.UUID `json:"id"`
	UserAID   uuid.UUID `json:"user_a_id"`
	UserBID   uuid.UUID `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Match) HasUser(userID uuid.UUID) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m Match) OtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	default:
		return uuid.Nil, false
	}
}

// CanonicalPair orders two user ids so the (user_a, user_b) pair is the same
// regardless of which side initiated. The uniqueness constraint on matches
// relies on this ordering.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
