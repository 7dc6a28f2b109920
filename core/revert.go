package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPayable aborts calls that attach value to a message that does not
	// accept it.
	ErrNonPayable = errors.New("non-payable message received value")
	// ErrMalformedInput aborts calls whose arguments fail to decode.
	ErrMalformedInput = errors.New("malformed call input")
)

// RevertError reports a call that aborted. No state change from the call is
// visible and none of its events were published.
type RevertError struct {
	Message string
	Err     error
}

func (e *RevertError) Error() string {
	if e == nil || e.Err == nil {
		return "call reverted"
	}
	if e.Message == "" {
		return fmt.Sprintf("call reverted: %v", e.Err)
	}
	return fmt.Sprintf("%s reverted: %v", e.Message, e.Err)
}

func (e *RevertError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsRevert reports whether err is (or wraps) a RevertError.
func IsRevert(err error) bool {
	var revert *RevertError
	return errors.As(err, &revert)
}

var errStakeOverflow = errors.New("ledger: stake exceeds 256 bits")
