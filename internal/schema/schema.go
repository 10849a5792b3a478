package schema

// Field names are the keys used in extraction results and draft field maps.
const (
	FieldName        = "name"
	FieldTimestamp   = "timestamp"
	FieldContext     = "context"
	FieldContactInfo = "contact_info"
)

// Field describes one slot the bot collects. Label is the human wording
// used in prompts ("who you met", not "name").
type Field struct {
	Name     string
	Label    string
	Required bool
}

// fields is the fixed record schema, in sink column order. Names are unique
// and the set never changes at runtime.
var fields = []Field{
	{Name: FieldName, Label: "who you met", Required: true},
	{Name: FieldContext, Label: "what it was about", Required: false},
	{Name: FieldTimestamp, Label: "when it happened", Required: true},
	{Name: FieldContactInfo, Label: "their contact info", Required: true},
}

// Fields returns the schema in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Known reports whether name is a schema field.
func Known(name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MissingRequired returns the required fields that are absent or empty in
// values, in schema order. The result is computed fresh on every call so
// prompts always reflect the current draft, never a stale list.
func MissingRequired(values map[string]string) []Field {
	var missing []Field
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if values[f.Name] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Names returns the field names in schema order.
func Names() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
