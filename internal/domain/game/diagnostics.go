package game

// Issue codes.
const (
	CodeEnrichmentError          = "ENRICHMENT_ERROR"
	CodeRequiredField            = "REQUIRED_FIELD"
	CodeInvalidValue             = "INVALID_VALUE"
	CodeDurationMismatch         = "DURATION_MISMATCH"
	CodeInvalidDurationFormat    = "INVALID_DURATION_FORMAT"
	CodeGuaranteeInferred        = "GUARANTEE_INFERRED"
	CodeSatelliteResolutionError = "SATELLITE_RESOLUTION_ERROR"
	CodeSeriesResolutionError    = "SERIES_RESOLUTION_ERROR"
	CodeVenueResolutionError     = "VENUE_RESOLUTION_ERROR"
	CodeRecurringResolutionError = "RECURRING_RESOLUTION_ERROR"
	CodeSeriesEntityMissing      = "SERIES_ENTITY_MISSING"
	CodeEntryStructureOutOfBand  = "ENTRY_STRUCTURE_UNRECOGNIZED"
	CodeSaveFailed               = "SAVE_FAILED"
	CodeSaveError                = "SAVE_ERROR"
)

// SystemField scopes issues that are not about one input field.
const SystemField = "_system"

type Issue struct {
	Field   string         `json:"field"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Diagnostics accumulates errors, warnings and completed field names as a
// record moves through the enrichment stages.
type Diagnostics struct {
	Errors          []Issue  `json:"errors"`
	Warnings        []Issue  `json:"warnings"`
	FieldsCompleted []string `json:"fieldsCompleted"`

	seen map[string]struct{}
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Errors:          []Issue{},
		Warnings:        []Issue{},
		FieldsCompleted: []string{},
	}
}

func (d *Diagnostics) Error(field, code, message string, details map[string]any) {
	d.Errors = append(d.Errors, Issue{Field: field, Code: code, Message: message, Details: details})
}

func (d *Diagnostics) Warn(field, code, message string, details map[string]any) {
	d.Warnings = append(d.Warnings, Issue{Field: field, Code: code, Message: message, Details: details})
}

// Completed records field names once each, in first-seen order.
func (d *Diagnostics) Completed(fields ...string) {
	if d.seen == nil {
		d.seen = make(map[string]struct{}, len(d.FieldsCompleted)+len(fields))
		for _, f := range d.FieldsCompleted {
			d.seen[f] = struct{}{}
		}
	}
	for _, f := range fields {
		if _, ok := d.seen[f]; ok {
			continue
		}
		d.seen[f] = struct{}{}
		d.FieldsCompleted = append(d.FieldsCompleted, f)
	}
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

func (d *Diagnostics) HasWarning(code string) bool {
	for _, w := range d.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Merge appends another builder's issues and completed fields.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Completed(other.FieldsCompleted...)
}
