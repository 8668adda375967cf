package imports

// Issue is one validation finding. Row is 1-based over the data rows
// (0 when the finding is not tied to a row).
type Issue struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of parse+validate for one upload.
// Valid=false is a hard gate: confirm is rejected and the same errors
// are echoed back.
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Preview  any     `json:"preview,omitempty"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

func (r *ValidationResult) addError(row int, field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, Issue{Row: row, Field: field, Message: message})
}

func (r *ValidationResult) addWarning(row int, field, message string) {
	r.Warnings = append(r.Warnings, Issue{Row: row, Field: field, Message: message})
}
