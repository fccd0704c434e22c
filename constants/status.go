package constants

// ProcessingStatus is the terminal classification of a parsed invoice.
type ProcessingStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPendingReview    ProcessingStatus = "Pending Review"             // initial, before validation runs
	StatusAutoApproved     ProcessingStatus = "Auto-Approved"              // high confidence, zero warnings
	StatusNeedsReview      ProcessingStatus = "Needs Review"               // medium confidence
	StatusManualProcessing ProcessingStatus = "Manual Processing Required" // low confidence or insufficient input
)
