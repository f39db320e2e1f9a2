package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
)

type Swipe struct {
	ID        uuid.UUID         `json:"id"`
	SwiperID  uuid.UUID         `json:"swiper_id"`
	SwipedID  uuid.UUID         `json:"swiped_id"`
	Action    enums.SwipeAction `json:"action"`
	CreatedAt time.Time         `json:"created_at"`
}
