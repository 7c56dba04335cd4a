package domain

import "errors"

var (
	ErrUnauthorized          = errors.New("authentication required")
	ErrRecordNotFound        = errors.New("record not found")
	ErrEditConflict          = errors.New("edit conflict")
	ErrSeatUnavailable       = errors.New("seat(s) are already held or sold")
	ErrHoldNotFound          = errors.New("hold not found")
	ErrHoldExpired           = errors.New("your seat hold has expired, please select your seats again")
	ErrSessionNotFound       = errors.New("booking session not found")
	ErrSessionExpired        = errors.New("booking session has expired")
	ErrSessionState          = errors.New("booking session is not in a valid state for this operation")
	ErrVoucherRejected       = errors.New("voucher code was rejected")
	ErrVoucherAlreadyApplied = errors.New("a voucher has already been applied to this session")
	ErrConversionConflict    = errors.New("seat conversion failed after partial completion")
)
