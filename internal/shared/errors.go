package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote catalog errors
	ErrProtocol        = fmt.Errorf("catalog response envelope is corrupted")
	ErrRemoteCall      = fmt.Errorf("catalog call failed")
	ErrMalformedRecord = fmt.Errorf("malformed catalog record")

	// Ingestion errors
	ErrReconciliation = fmt.Errorf("entity reconciliation failed")
	ErrEntityNotFound = fmt.Errorf("entity not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
