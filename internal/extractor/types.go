package extractor

// extraction is the strict JSON shape the model must return. Strict
// structured output requires every property to be present, so "not found"
// is the empty string rather than an absent key.
type extraction struct {
	Name        string `json:"name" jsonschema_description:"Full name of the person met, empty if not mentioned"`
	Context     string `json:"context" jsonschema_description:"One-line summary of what the interaction was about, empty if unclear"`
	Timestamp   string `json:"timestamp" jsonschema_description:"When the interaction happened, verbatim from the text (e.g. 'yesterday', '2024-11-30'), empty if not mentioned"`
	ContactInfo string `json:"contact_info" jsonschema_description:"Email, phone number or handle for the person, empty if not mentioned"`
}

// fieldValues maps the extraction onto schema field names.
func (e extraction) fieldValues() map[string]string {
	return map[string]string{
		"name":         e.Name,
		"context":      e.Context,
		"timestamp":    e.Timestamp,
		"contact_info": e.ContactInfo,
	}
}
