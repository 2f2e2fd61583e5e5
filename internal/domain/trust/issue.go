package trust

import "strings"

// IssueType categorizes the civic issue a report claims to document. The
// category shifts both the trust multiplier and the base severity.
type IssueType string

const (
	IssuePothole   IssueType = "pothole"
	IssueGarbage   IssueType = "garbage"
	IssueWaterLeak IssueType = "water_leak"
	IssueRoadBlock IssueType = "road_block"
	IssueAccident  IssueType = "accident"
	IssueFire      IssueType = "fire"
	IssueOther     IssueType = "other"
)

// ParseIssueType normalizes free-form input to a known category. Unknown
// or blank input degrades to IssueOther rather than failing the request.
func ParseIssueType(raw string) IssueType {
	switch IssueType(strings.ToLower(strings.TrimSpace(raw))) {
	case IssuePothole:
		return IssuePothole
	case IssueGarbage:
		return IssueGarbage
	case IssueWaterLeak:
		return IssueWaterLeak
	case IssueRoadBlock:
		return IssueRoadBlock
	case IssueAccident:
		return IssueAccident
	case IssueFire:
		return IssueFire
	default:
		return IssueOther
	}
}

func (t IssueType) String() string { return string(t) }
