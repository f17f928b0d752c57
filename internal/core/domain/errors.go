package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every client-facing failure unwraps to exactly one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotFound         = errors.New("not found")
	ErrPrecondition     = errors.New("precondition failed")
	ErrSignatureInvalid = errors.New("signature invalid")
	ErrConflict         = errors.New("conflict")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrUpstream         = errors.New("upstream failure")
)

// Error carries a client-safe message alongside its kind. Cause holds the
// underlying failure and is only surfaced outside production.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewError returns an Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf formats the message of a new Error of the given kind.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new Error of the given kind.
func Wrap(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

var (
	ErrUserNotFound        = NewError(ErrNotFound, "user not found")
	ErrProductNotFound     = NewError(ErrNotFound, "product not found")
	ErrOrderNotFound       = NewError(ErrNotFound, "order not found")
	ErrCartItemNotFound    = NewError(ErrNotFound, "product not found in cart")
	ErrCartEmpty           = NewError(ErrNotFound, "cart is empty")
	ErrNoOrders            = NewError(ErrNotFound, "no orders found")
	ErrReservationNotFound = NewError(ErrNotFound, "order details not found, please place the order again")

	ErrInvalidCredentials = NewError(ErrUnauthenticated, "invalid credentials")
	ErrEmailNotVerified   = NewError(ErrUnauthenticated, "email not verified, please verify your email first")
	ErrAccessTokenMissing = NewError(ErrUnauthenticated, "access token not provided")
	ErrBothTokensMissing  = NewError(ErrUnauthenticated, "both tokens missing")
	ErrRefreshInvalid     = NewError(ErrUnauthenticated, "invalid or expired refresh token")

	ErrAccessDenied  = NewError(ErrForbidden, "access forbidden")
	ErrNotOrderOwner = NewError(ErrForbidden, "you can only cancel your own orders")

	ErrAlreadyVerified = NewError(ErrValidation, "user already exists and is verified")
	ErrInvalidOTP      = NewError(ErrValidation, "invalid otp")
	ErrOTPExpired      = NewError(ErrValidation, "otp expired")

	ErrPaymentSignature = NewError(ErrSignatureInvalid, "invalid payment signature")
	ErrOrderChanged     = NewError(ErrPrecondition, "order was modified concurrently, retry")
	ErrProductExists    = NewError(ErrConflict, "product already exists")
	ErrUserExists       = NewError(ErrConflict, "user already exists")
	ErrOrderExists      = NewError(ErrConflict, "order already exists")
	ErrLoginLocked      = NewError(ErrTooManyRequests, "too many failed login attempts, try again later")
)
