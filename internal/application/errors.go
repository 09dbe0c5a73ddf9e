package application

import "errors"

var (
	ErrMissingTokens = errors.New("missing tokens parameter")
	ErrNoValidTokens = errors.New("no valid tokens provided")
	ErrOrchestration = errors.New("price orchestration failed")
)
