package repo

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyFinished   = errors.New("match already finished")
	ErrMarketLocked      = errors.New("market locked")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
