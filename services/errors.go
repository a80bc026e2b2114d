package services

import "errors"

var (
	// -- Taxonomy, mapped to HTTP status by the controllers --
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("server misconfigured")

	// -- Validation & Input --
	ErrInvalidReference = wrap(ErrValidation, "invalid identifier")
	ErrMissingFields    = wrap(ErrValidation, "missing required fields")
	ErrCoverRequired    = wrap(ErrValidation, "coverImage is required")
	ErrOwnerFiles       = wrap(ErrValidation, "both nicFile and bookshopImage are required")
	ErrEmptyOrder       = wrap(ErrValidation, "order has no items")
	ErrInvalidStatus    = wrap(ErrValidation, "invalid status")
	ErrUnresolvedSeller = wrap(ErrValidation, "book has no resolvable owner")

	// -- Resource State --
	ErrBookNotFound        = wrap(ErrNotFound, "book not found")
	ErrOwnerNotFound       = wrap(ErrNotFound, "owner not found")
	ErrUserNotFound        = wrap(ErrNotFound, "user not found")
	ErrCartItemNotFound    = wrap(ErrNotFound, "cart or item not found")
	ErrOrderNotFound       = wrap(ErrNotFound, "order not found")
	ErrReservationNotFound = wrap(ErrNotFound, "reservation not found")
	ErrNotPending          = wrap(ErrConflict, "reservation is not pending")
	ErrOwnerExists         = wrap(ErrConflict, "owner profile already exists for this user")

	// -- Auth --
	ErrUserExists         = wrap(ErrConflict, "user already exists, please log in")
	ErrInvalidCredentials = wrap(ErrUnauthorized, "invalid credentials")
	ErrAdminSignup        = wrap(ErrForbidden, "admin registration is not allowed")
	ErrNotShopOwner       = wrap(ErrForbidden, "shop belongs to another seller")
	ErrNoSecret           = wrap(ErrMisconfigured, "JWT_SECRET is missing")
)

// kindError keeps a readable message while matching its kind with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// validationf builds an ad hoc validation error.
func validationf(msg string) error {
	return wrap(ErrValidation, msg)
}
