package shared

import "errors"

var (
	// ErrNotFound indicates a referenced entity does not exist in the caller's shop.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates a stock-out would drive on-hand quantity or weight negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrMissingCategory indicates product input carried neither a category id nor a usable typed name.
	ErrMissingCategory = errors.New("missing category")
	// ErrConcurrencyConflict indicates the storage layer could not serialise a competing write; callers may retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrForbidden indicates the principal may not act on the requested shop or resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a uniqueness constraint was violated (barcode, email, category name).
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
)
