package jwtx

import "errors"

var (
	ErrMalformed     = errors.New("jwtx: malformed token")
	ErrAlgMismatch   = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig    = errors.New("jwtx: invalid signature")
	ErrMissingSecret = errors.New("jwtx: missing signing secret")
	ErrUnknownRole   = errors.New("jwtx: unknown token role")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrWrongRole    = errors.New("jwtx: token role mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Failure is the coarse verification outcome callers map onto their own
// error responses.
type Failure int

const (
	FailureNone Failure = iota
	FailureExpired
	FailureMalformed
	FailureWrongAudience
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureExpired:
		return "expired"
	case FailureMalformed:
		return "malformed"
	case FailureWrongAudience:
		return "wrong_audience"
	default:
		return "unknown"
	}
}

// Classify buckets a Verify error. A nil error is FailureNone and anything
// unrecognised is treated as malformed.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrExpired):
		return FailureExpired
	case errors.Is(err, ErrIssuer), errors.Is(err, ErrAudience), errors.Is(err, ErrWrongRole):
		return FailureWrongAudience
	default:
		return FailureMalformed
	}
}
