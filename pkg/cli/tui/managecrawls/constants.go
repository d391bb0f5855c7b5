package managecrawls

// Step constants for the manage crawls state machine
const (
	StepListCrawls = iota
	StepActionMenu
	StepViewDetails
	StepRemoveConfirm
	StepAddURLs
	StepWorking
	StepDone
)

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80
