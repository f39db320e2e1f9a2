package chat

import (
	"time"

	"github.com/Fumiyasu01/matching-app/internal/domain/rules"
)

// DayGroup is one date-divider section of a conversation.
type DayGroup struct {
	DateKey  string        `json:"date"`
	Messages []MessageView `json:"messages"`
}

// GroupByDay splits an already ordered conversation on the viewer's
// local midnight.
func GroupByDay(views []MessageView, loc *time.Location) []DayGroup {
	if len(views) == 0 {
		return []DayGroup{}
	}

	groups := make([]DayGroup, 0, 4)
	for _, v := range views {
		key := rules.DateDividerKey(v.CreatedAt, loc)
		if len(groups) == 0 || groups[len(groups)-1].DateKey != key {
			groups = append(groups, DayGroup{DateKey: key})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, v)
	}

	return groups
}
