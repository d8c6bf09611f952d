package order

// Status represents the workflow status of an order. The workflow is strictly
// linear; no branch and no backward transition exists.
type Status string

const (
	StatusNotMatched    Status = "not_matched"
	StatusMatched       Status = "matched"
	StatusDocumentPhase Status = "document_phase"
	StatusProcessing    Status = "processing"
	StatusCompleted     Status = "completed"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusNotMatched, StatusMatched, StatusDocumentPhase, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusNotMatched:
		return target == StatusMatched
	case StatusMatched:
		return target == StatusDocumentPhase
	case StatusDocumentPhase:
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusCompleted
	case StatusCompleted:
		return false // terminal
	}
	return false
}

// IsTerminal returns true for the terminal workflow state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// SavedStatus is the draft/confirmed axis, independent of the workflow status.
// Draft orders are editable by their creator and excluded from workflow
// queries by explicit filtering.
type SavedStatus string

const (
	SavedStatusDraft     SavedStatus = "draft"
	SavedStatusConfirmed SavedStatus = "confirmed"
)

// IsValid checks if the saved status is a known value
func (s SavedStatus) IsValid() bool {
	return s == SavedStatusDraft || s == SavedStatusConfirmed
}
