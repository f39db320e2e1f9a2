package enums

import "strings"

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonFake          ReportReason = "fake"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonOther         ReportReason = "other"
)

func (v ReportReason) String() string {
	return string(v)
}

func ParseReportReason(input string) (ReportReason, bool) {
	switch ReportReason(strings.ToLower(strings.TrimSpace(input))) {
	case ReportReasonSpam:
		return ReportReasonSpam, true
	case ReportReasonInappropriate:
		return ReportReasonInappropriate, true
	case ReportReasonFake:
		return ReportReasonFake, true
	case ReportReasonHarassment:
		return ReportReasonHarassment, true
	case ReportReasonOther:
		return ReportReasonOther, true
	default:
		return "", false
	}
}
