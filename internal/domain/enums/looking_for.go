package enums

import "strings"

type LookingFor string

const (
	LookingForWork      LookingFor = "work"
	LookingForVolunteer LookingFor = "volunteer"
	LookingForBoth      LookingFor = "both"
)

func (v LookingFor) String() string {
	return string(v)
}

func ParseLookingFor(input string) (LookingFor, bool) {
	switch LookingFor(strings.ToLower(strings.TrimSpace(input))) {
	case LookingForWork:
		return LookingForWork, true
	case LookingForVolunteer:
		return LookingForVolunteer, true
	case LookingForBoth:
		return LookingForBoth, true
	default:
		return "", false
	}
}
