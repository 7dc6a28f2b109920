package watch2give

import (
	"errors"
	"fmt"
)

var (
	errNilState = errors.New("watch2give engine: state not configured")

	// ErrPreconditionViolated is the only abort kind the ledger produces. Every
	// failed balance check wraps it.
	ErrPreconditionViolated = errors.New("watch2give: precondition violated")

	// ErrInsufficientTokens aborts a burn larger than the account balance.
	ErrInsufficientTokens = fmt.Errorf("%w: insufficient tokens to burn", ErrPreconditionViolated)
	// ErrNotEnoughTokens aborts a donation larger than the caller balance.
	ErrNotEnoughTokens = fmt.Errorf("%w: not enough tokens", ErrPreconditionViolated)
)
