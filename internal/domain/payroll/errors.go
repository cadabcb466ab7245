package payroll

import "errors"

var (
	ErrRunNotFound      = errors.New("payroll run not found")
	ErrPayslipNotFound  = errors.New("payslip not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrRunInProgress    = errors.New("payroll run is still processing")
	ErrNoRecipient      = errors.New("employee has no email address")
)
