package accounts

import "errors"

var (
	ErrContractorNotFound = errors.New("contractor account not found")
)
