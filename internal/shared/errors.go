package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Reference data errors
	ErrInvalidData  = fmt.Errorf("invalid reference data")
	ErrEmptyCatalog = fmt.Errorf("stand catalog is empty")
	ErrStandMissing = fmt.Errorf("stand not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
