package spqrerror

import (
	"errors"
	"fmt"
)

const (
	SPQR_UNEXPECTED         = "SPQRU"
	SPQR_INVALID_REQUEST    = "SPQRQ"
	SPQR_SEQUENCE_NOT_FOUND = "SPQRN"
	SPQR_SEQUENCE_CORRUPT   = "SPQRB"
	SPQR_SEQUENCE_OVERFLOW  = "SPQRV"
	SPQR_SEQUENCE_EXISTS    = "SPQRE"
	SPQR_SEQUENCE_RETRIES   = "SPQRT"
	SPQR_STORAGE_ERROR      = "SPQRO"
)

var existingErrorCodeMap = map[string]string{
	SPQR_UNEXPECTED:         "Unexpected error",
	SPQR_INVALID_REQUEST:    "Invalid request",
	SPQR_SEQUENCE_NOT_FOUND: "Sequence not found",
	SPQR_SEQUENCE_CORRUPT:   "Sequence corrupt",
	SPQR_SEQUENCE_OVERFLOW:  "Sequence overflow",
	SPQR_SEQUENCE_EXISTS:    "Sequence already exists",
	SPQR_SEQUENCE_RETRIES:   "Too many retries",
	SPQR_STORAGE_ERROR:      "Storage error",
}

// domainCodes are errors caused by the caller or by the persisted state of
// a sequence. Their text is safe to show to API callers.
var domainCodes = map[string]struct{}{
	SPQR_INVALID_REQUEST:    {},
	SPQR_SEQUENCE_NOT_FOUND: {},
	SPQR_SEQUENCE_CORRUPT:   {},
	SPQR_SEQUENCE_OVERFLOW:  {},
	SPQR_SEQUENCE_EXISTS:    {},
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &SpqrError{}

type SpqrError struct {
	Err error

	ErrorCode string

	cause error
}

func New(errorCode string, errorMsg string) *SpqrError {
	return &SpqrError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

func Newf(errorCode string, format string, a ...any) *SpqrError {
	return &SpqrError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

// Wrap attaches an underlying error (typically a driver error) that stays
// reachable through errors.Is / errors.As but is not part of Message.
func Wrap(errorCode string, cause error, errorMsg string) *SpqrError {
	return &SpqrError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
		cause:     cause,
	}
}

func (er *SpqrError) Error() string {
	if er.cause != nil {
		return fmt.Sprintf("Code: %s. Name: %s. Description: %s: %v.",
			er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err, er.cause)
	}
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err)
}

// Message is the bare description without code decoration.
func (er *SpqrError) Message() string {
	return er.Err.Error()
}

func (er *SpqrError) Unwrap() error {
	return er.cause
}

// Code returns the error code of the first SpqrError in the chain, or
// SPQR_UNEXPECTED if there is none.
func Code(err error) string {
	var se *SpqrError
	if errors.As(err, &se) {
		return se.ErrorCode
	}
	return SPQR_UNEXPECTED
}

// IsDomain reports whether err carries a caller-facing code.
func IsDomain(err error) bool {
	var se *SpqrError
	if !errors.As(err, &se) {
		return false
	}
	_, ok := domainCodes[se.ErrorCode]
	return ok
}
