package analysis

import "errors"

// ContractError reports that a caller violated an input contract of an
// estimator (as opposed to a recoverable data anomaly). A report run treats
// it as fatal for the enclosing analysis step only, not for the process.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return e.Msg
}

// IsContractError reports whether err is (or wraps) a ContractError.
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
