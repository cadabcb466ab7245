package payroll

const (
	RunStatusPending    = "Pending"
	RunStatusProcessing = "Processing"
	RunStatusCompleted  = "Completed"
	RunStatusFailed     = "Failed"

	JobProcessRun = "payroll_run"
)
