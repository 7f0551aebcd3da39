package workflow

// Outcome is the terminal result of one ticket-creation attempt. The run
// controller retries OutcomeFailed up to its budget; OutcomeNoData is
// terminal for the item, since retrying cannot manufacture data.
type Outcome int

const (
	// OutcomeFailed means a UI step could not be completed.
	OutcomeFailed Outcome = iota
	// OutcomeSuccess means the ticket was created and confirmed.
	OutcomeSuccess
	// OutcomeNoData means the application reported no rows for the filters.
	OutcomeNoData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoData:
		return "no_data"
	default:
		return "failed"
	}
}

// ticketState is a stage of the creation state machine. Failure is
// representable from every state by returning an Outcome.
type ticketState int

const (
	stateFillingFilters ticketState = iota
	stateFiltering
	stateValidatingResult
	stateOpeningTicketModal
	stateConfirmingCreate
	stateDone
)

// validation is the result of inspecting the filter result table.
type validation int

const (
	validationFailed validation = iota
	validationMatch
	validationMismatch
	validationNoData
)
