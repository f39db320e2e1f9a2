package enums

import "strings"

type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
	TimeSlotAllDay    TimeSlot = "all_day"
)

func (v TimeSlot) String() string {
	return string(v)
}

func ParseTimeSlot(input string) (TimeSlot, bool) {
	switch TimeSlot(strings.ToLower(strings.TrimSpace(input))) {
	case TimeSlotMorning:
		return TimeSlotMorning, true
	case TimeSlotAfternoon:
		return TimeSlotAfternoon, true
	case TimeSlotEvening:
		return TimeSlotEvening, true
	case TimeSlotAllDay:
		return TimeSlotAllDay, true
	default:
		return "", false
	}
}

type SlotLocation string

const (
	SlotLocationRemote SlotLocation = "remote"
	SlotLocationOnsite SlotLocation = "onsite"
	SlotLocationBoth   SlotLocation = "both"
)

func (v SlotLocation) String() string {
	return string(v)
}

func ParseSlotLocation(input string) (SlotLocation, bool) {
	switch SlotLocation(strings.ToLower(strings.TrimSpace(input))) {
	case SlotLocationRemote:
		return SlotLocationRemote, true
	case SlotLocationOnsite:
		return SlotLocationOnsite, true
	case SlotLocationBoth:
		return SlotLocationBoth, true
	default:
		return "", false
	}
}

type SlotStatus string

const (
	SlotStatusOpen   SlotStatus = "open"
	SlotStatusClosed SlotStatus = "closed"
)

func (v SlotStatus) String() string {
	return string(v)
}

func ParseSlotStatus(input string) (SlotStatus, bool) {
	switch SlotStatus(strings.ToLower(strings.TrimSpace(input))) {
	case SlotStatusOpen:
		return SlotStatusOpen, true
	case SlotStatusClosed:
		return SlotStatusClosed, true
	default:
		return "", false
	}
}
