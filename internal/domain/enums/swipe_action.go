package enums

import "strings"

type SwipeAction string

const (
	SwipeActionLike SwipeAction = "like"
	SwipeActionPass SwipeAction = "pass"
)

func (v SwipeAction) String() string {
	return string(v)
}

func ParseSwipeAction(input string) (SwipeAction, bool) {
	switch SwipeAction(strings.ToLower(strings.TrimSpace(input))) {
	case SwipeActionLike:
		return SwipeActionLike, true
	case SwipeActionPass:
		return SwipeActionPass, true
	default:
		return "", false
	}
}
