package types

import "aduan-agent/social"

// ComplaintRequest is the body of POST /api/complaint. Prompt is a legacy
// alias for Complaint kept for older clients.
type ComplaintRequest struct {
	Complaint string `json:"complaint"`
	Prompt    string `json:"prompt"`
	Tone      string `json:"tone"`
}

// Text returns the complaint text, honoring the legacy alias.
func (r *ComplaintRequest) Text() string {
	if r.Complaint != "" {
		return r.Complaint
	}
	return r.Prompt
}

// SuggestedContact is one ranked agency suggestion in the response.
type SuggestedContact struct {
	Name        string            `json:"name"`
	Score       float64           `json:"score"`
	Description string            `json:"description"`
	SocialMedia map[string]string `json:"social_media,omitempty"`
	Website     string            `json:"website,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
}

// ComplaintResponse is the success body of POST /api/complaint.
type ComplaintResponse struct {
	GeneratedText     string             `json:"generated_text"`
	SuggestedContacts []SuggestedContact `json:"suggested_contacts"`
	Rationale         string             `json:"rationale"`
	SocialHandleInfo  social.HandleInfo  `json:"social_handle_info"`
}

// HandleRequest is the body of POST /api/social-handle.
type HandleRequest struct {
	MinistryName string `json:"ministry_name"`
}
