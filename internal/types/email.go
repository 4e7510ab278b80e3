package types

// EmailStatusScheduled marks drafts that are waiting for variations
const EmailStatusScheduled = "Scheduled"

// NoJobDescription replaces an empty lead job description in rewrite prompts
const NoJobDescription = "No job description provided."

// Email is one outreach draft for a lead.
// Absent columns are represented by empty strings.
type Email struct {
	ID     string `json:"id"`
	LeadID string `json:"lead_id"`
	Status string `json:"status,omitempty"`
	Body1  string `json:"body_1"`
	Body2  string `json:"body_2,omitempty"`
	Body3  string `json:"body_3,omitempty"`
	Body4  string `json:"body_4,omitempty"`
}

// HasRequiredFields reports whether the email carries everything a rewrite needs
func (e Email) HasRequiredFields() bool {
	return e.ID != "" && e.LeadID != "" && e.Body1 != ""
}

// Lead is a target company and role referenced by emails
type Lead struct {
	ID             string `json:"id"`
	JobDescription string `json:"job_description"`
}

// VariantSet holds the three alternative rewrites of an email body
type VariantSet struct {
	Body2 string `json:"body_2"`
	Body3 string `json:"body_3"`
	Body4 string `json:"body_4"`
}
