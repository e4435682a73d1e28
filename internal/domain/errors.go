package domain

import "errors"

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrUnknownTransaction   = errors.New("unknown transaction id")
	ErrUnknownAccount       = errors.New("unknown account")
	ErrAccountLocked        = errors.New("account locked")
	ErrClientMismatch       = errors.New("transaction belongs to another client")
	ErrAlreadyDisputed      = errors.New("transaction already left the normal state")
	ErrDisputeNotOpen       = errors.New("no open dispute for transaction")
	ErrInvalidCSVFormat     = errors.New("invalid CSV format")
	ErrUploadNotFound       = errors.New("upload not found")
)
