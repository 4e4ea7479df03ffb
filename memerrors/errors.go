package memerrors

import (
	"errors"
	"strings"
)

// Layout (L) Errors
var (
	ErrLRowWidthNegative = errors.New("L1|RowWidthNegative: Bank functions plus column bits exceed the matrix width.")
	ErrLWidthInvalid     = errors.New("L2|WidthInvalid: Matrix width must be between 1 and 64 bits.")
)

// Bank function (B) Errors
var (
	ErrBNoFunctions   = errors.New("B1|NoFunctions: At least one bank function is required.")
	ErrBEmptyFunction = errors.New("B2|EmptyFunction: A bank function has no bit indices.")
	ErrBNegativeIndex = errors.New("B3|NegativeIndex: A bank function contains a negative bit index.")
)

// Matrix (M) Errors
var (
	ErrMSingularMatrix      = errors.New("M1|SingularMatrix: Forward matrix has no inverse over GF(2).")
	ErrMInternalConsistency = errors.New("M2|InternalConsistency: Computed inverse fails the round-trip identity check.")
	ErrMDimensionMismatch   = errors.New("M3|DimensionMismatch: Matrix dimensions do not agree.")
	ErrMDegradedInverse     = errors.New("M4|DegradedInverse: Address matrix fell back to identity.")
)

// RE.log (R) Errors
var (
	ErrRNoBankSection = errors.New("R1|NoBankSection: No bank function section in the reverse-engineering log.")
	ErrRShortSection  = errors.New("R2|ShortSection: Bank function section lists fewer functions than announced.")
)

// Configuration (C) Errors
var (
	ErrCNotFound = errors.New("C1|NotFound: Configuration file does not exist.")
	ErrCInvalid  = errors.New("C2|Invalid: Configuration file is not valid JSON.")
	ErrCNegative = errors.New("C3|Negative: Configuration value must not be negative.")
)

// Archive (S) Errors
var (
	ErrSNotArchived = errors.New("S1|NotArchived: No archived configuration for this fingerprint.")
)

var coded = []error{
	ErrLRowWidthNegative, ErrLWidthInvalid,
	ErrBNoFunctions, ErrBEmptyFunction, ErrBNegativeIndex,
	ErrMSingularMatrix, ErrMInternalConsistency, ErrMDimensionMismatch, ErrMDegradedInverse,
	ErrRNoBankSection, ErrRShortSection,
	ErrCNotFound, ErrCInvalid, ErrCNegative,
	ErrSNotArchived,
}

// Sentinel returns the coded error in err's chain, or nil if there is none.
func Sentinel(err error) error {
	for _, s := range coded {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(err.Error(), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
