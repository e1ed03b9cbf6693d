package validation

// Errors collects field-level validation failures so a request can report
// every failing field at once instead of stopping at the first.
type Errors struct {
	byField map[string][]string
}

// NewErrors creates an empty error collector.
func NewErrors() *Errors {
	return &Errors{byField: make(map[string][]string)}
}

// Add records a failure message for a field.
func (e *Errors) Add(field, message string) *Errors {
	e.byField[field] = append(e.byField[field], message)
	return e
}

// HasErrors reports whether any field failed.
func (e *Errors) HasErrors() bool {
	return len(e.byField) > 0
}

// Fields returns the collected messages keyed by field name.
func (e *Errors) Fields() map[string][]string {
	return e.byField
}

// First returns the first message recorded for a field, or "".
func (e *Errors) First(field string) string {
	if msgs := e.byField[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
