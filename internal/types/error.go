package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidFplId              ErrorCode = "INVALID_FPL_ID"
	InvalidStakeAmount        ErrorCode = "INVALID_STAKE_AMOUNT"
	InvalidLockPeriod         ErrorCode = "INVALID_LOCK_PERIOD"
	UnauthorizedAccess        ErrorCode = "UNAUTHORIZED_ACCESS"
	StakeNotActive            ErrorCode = "STAKE_NOT_ACTIVE"
	InsufficientFunds         ErrorCode = "INSUFFICIENT_FUNDS"
	NoRewardsAvailable        ErrorCode = "NO_REWARDS_AVAILABLE"
	InvalidWithdrawalAmount   ErrorCode = "INVALID_WITHDRAWAL_AMOUNT"
	TooEarlyToClaim           ErrorCode = "TOO_EARLY_TO_CLAIM"
	InvalidRewardParameter    ErrorCode = "INVALID_REWARD_PARAMETER"
	InvalidTreasuryParameter  ErrorCode = "INVALID_TREASURY_PARAMETER"
	InvalidDepositAmount      ErrorCode = "INVALID_DEPOSIT_AMOUNT"
	ExceedsWithdrawalLimit    ErrorCode = "EXCEEDS_WITHDRAWAL_LIMIT"
	InvalidStakeParameter     ErrorCode = "INVALID_STAKE_PARAMETER"
	InvalidGlobalParameter    ErrorCode = "INVALID_GLOBAL_PARAMETER"
	AccountNotInitialized     ErrorCode = "ACCOUNT_NOT_INITIALIZED"
	AccountAlreadyInitialized ErrorCode = "ACCOUNT_ALREADY_INITIALIZED"
	TransferFailed            ErrorCode = "TRANSFER_FAILED"
	Unauthenticated           ErrorCode = "UNAUTHENTICATED"
	BadRequest                ErrorCode = "BAD_REQUEST"
	InternalServiceError      ErrorCode = "INTERNAL_SERVICE_ERROR"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Error is the single error type returned by engine operations. Every
// rejection carries a code so callers can branch on the kind of failure.
type Error struct {
	StatusCode int
	ErrorCode  ErrorCode
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.ErrorCode.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so sentinels
// like ErrStakeNotActive can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.ErrorCode == e.ErrorCode
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewValidationFailedError(errorCode ErrorCode, err error) *Error {
	return NewError(http.StatusBadRequest, errorCode, err)
}

func NewUnauthorizedError(format string, args ...any) *Error {
	return NewError(http.StatusForbidden, UnauthorizedAccess, fmt.Errorf(format, args...))
}

func NewStateError(errorCode ErrorCode, err error) *Error {
	status := http.StatusConflict
	switch errorCode {
	case AccountNotInitialized:
		status = http.StatusNotFound
	case NoRewardsAvailable, ExceedsWithdrawalLimit, InsufficientFunds:
		status = http.StatusUnprocessableEntity
	}
	return NewError(status, errorCode, err)
}

func NewTransferFailedError(err error) *Error {
	return NewError(http.StatusBadGateway, TransferFailed, err)
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidFplId              = &Error{ErrorCode: InvalidFplId}
	ErrInvalidStakeAmount        = &Error{ErrorCode: InvalidStakeAmount}
	ErrInvalidLockPeriod         = &Error{ErrorCode: InvalidLockPeriod}
	ErrUnauthorizedAccess        = &Error{ErrorCode: UnauthorizedAccess}
	ErrStakeNotActive            = &Error{ErrorCode: StakeNotActive}
	ErrInsufficientFunds         = &Error{ErrorCode: InsufficientFunds}
	ErrNoRewardsAvailable        = &Error{ErrorCode: NoRewardsAvailable}
	ErrInvalidWithdrawalAmount   = &Error{ErrorCode: InvalidWithdrawalAmount}
	ErrTooEarlyToClaim           = &Error{ErrorCode: TooEarlyToClaim}
	ErrInvalidRewardParameter    = &Error{ErrorCode: InvalidRewardParameter}
	ErrInvalidTreasuryParameter  = &Error{ErrorCode: InvalidTreasuryParameter}
	ErrInvalidDepositAmount      = &Error{ErrorCode: InvalidDepositAmount}
	ErrExceedsWithdrawalLimit    = &Error{ErrorCode: ExceedsWithdrawalLimit}
	ErrInvalidStakeParameter     = &Error{ErrorCode: InvalidStakeParameter}
	ErrInvalidGlobalParameter    = &Error{ErrorCode: InvalidGlobalParameter}
	ErrAccountNotInitialized     = &Error{ErrorCode: AccountNotInitialized}
	ErrAccountAlreadyInitialized = &Error{ErrorCode: AccountAlreadyInitialized}
	ErrTransferFailed            = &Error{ErrorCode: TransferFailed}
)

// CodeOf extracts the error code from err, falling back to
// InternalServiceError for errors that did not come from the engine.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode
	}
	return InternalServiceError
}
