package repository

import "errors"

// Sentinel kinds for ledger store errors.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrGenesis            = errors.New("genesis load failed")
	ErrUnsupportedFormat  = errors.New("unsupported genesis format")
)
