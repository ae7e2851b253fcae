package models

// DomainInfo describes one top-level exam content category.
type DomainInfo struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ExamDomains enumerates the four Project+ (PK0-005) exam domains with their
// published weightings, used for the per-domain breakdown.
var ExamDomains = map[string]DomainInfo{
	"1": {Name: "Project Management Concepts", Weight: 0.33},
	"2": {Name: "Project Life Cycle Phases", Weight: 0.30},
	"3": {Name: "Tools and Documentation", Weight: 0.19},
	"4": {Name: "Basics of IT and Governance", Weight: 0.18},
}

// DomainName returns the display name for a domain id, with a generic
// label for unknown domains.
func DomainName(domain string) string {
	if info, ok := ExamDomains[domain]; ok {
		return info.Name
	}
	return "Domain " + domain
}

// DomainWeight returns the exam weighting for a domain id, 0 if unknown.
func DomainWeight(domain string) float64 {
	return ExamDomains[domain].Weight
}
