package wifi

import (
	"errors"
	"fmt"
)

// Code identifies the cause of a failed operation. Values are stable and match
// the numeric error domain exposed to other processes.
type Code int

const (
	NoError                                  Code = 0
	EAPOLError                               Code = 1
	InvalidParameterError                    Code = -3900
	NoMemoryError                            Code = -3901
	UnknownError                             Code = -3902
	NotSupportedError                        Code = -3903
	InvalidFormatError                       Code = -3904
	TimeoutError                             Code = -3905
	UnspecifiedFailureError                  Code = -3906
	UnsupportedCapabilitiesError             Code = -3907
	ReassociationDeniedError                 Code = -3908
	AssociationDeniedError                   Code = -3909
	AuthenticationAlgorithmUnsupportedError  Code = -3910
	InvalidAuthenticationSequenceNumberError Code = -3911
	ChallengeFailureError                    Code = -3912
	APFullError                              Code = -3913
	UnsupportedRateSetError                  Code = -3914
	ShortSlotUnsupportedError                Code = -3915
	DSSSOFDMUnsupportedError                 Code = -3916
	InvalidInformationElementError           Code = -3917
	InvalidGroupCipherError                  Code = -3918
	InvalidPairwiseCipherError               Code = -3919
	InvalidAKMPError                         Code = -3920
	UnsupportedRSNVersionError               Code = -3921
	InvalidRSNCapabilitiesError              Code = -3922
	CipherSuiteRejectedError                 Code = -3923
	InvalidPMKError                          Code = -3924
	SupplicantTimeoutError                   Code = -3925
	HTFeaturesNotSupportedError              Code = -3926
	PCOTransitionTimeNotSupportedError       Code = -3927
	ReferenceNotBoundError                   Code = -3928
	IPCFailureError                          Code = -3929
	OperationNotPermittedError               Code = -3930
	GenericError                             Code = -3931
)

var codeNames = map[Code]string{
	NoError:                                  "no error",
	EAPOLError:                               "EAPOL error",
	InvalidParameterError:                    "invalid parameter",
	NoMemoryError:                            "no memory",
	UnknownError:                             "unknown error",
	NotSupportedError:                        "operation not supported",
	InvalidFormatError:                       "invalid protocol element",
	TimeoutError:                             "operation timed out",
	UnspecifiedFailureError:                  "access point gave no failure reason",
	UnsupportedCapabilitiesError:             "requested capabilities unsupported by access point",
	ReassociationDeniedError:                 "reassociation denied",
	AssociationDeniedError:                   "association denied",
	AuthenticationAlgorithmUnsupportedError:  "authentication algorithm unsupported",
	InvalidAuthenticationSequenceNumberError: "authentication sequence number out of sequence",
	ChallengeFailureError:                    "authentication challenge failed",
	APFullError:                              "access point cannot take another station",
	UnsupportedRateSetError:                  "basic rate set unsupported",
	ShortSlotUnsupportedError:                "short slot time unsupported",
	DSSSOFDMUnsupportedError:                 "DSSS-OFDM unsupported",
	InvalidInformationElementError:           "invalid information element",
	InvalidGroupCipherError:                  "invalid group cipher",
	InvalidPairwiseCipherError:               "invalid pairwise cipher",
	InvalidAKMPError:                         "invalid authentication selector",
	UnsupportedRSNVersionError:               "unsupported WPA/WPA2 version",
	InvalidRSNCapabilitiesError:              "invalid RSN capabilities",
	CipherSuiteRejectedError:                 "cipher suite rejected by policy",
	InvalidPMKError:                          "PMK rejected by access point",
	SupplicantTimeoutError:                   "WPA/WPA2 handshake timed out",
	HTFeaturesNotSupportedError:              "HT features unsupported",
	PCOTransitionTimeNotSupportedError:       "PCO transition time unsupported",
	ReferenceNotBoundError:                   "no interface bound",
	IPCFailureError:                          "communication with wireless service failed",
	OperationNotPermittedError:               "operation not permitted",
	GenericError:                             "generic error",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("error %d", int(c))
}

// Rejected reports whether the code is an access point rejection of an
// authentication or association attempt.
func (c Code) Rejected() bool {
	return c <= UnspecifiedFailureError && c >= PCOTransitionTimeNotSupportedError
}

// Retryable reports whether the same call may succeed later without the
// caller changing anything.
func (c Code) Retryable() bool {
	switch c {
	case TimeoutError, IPCFailureError, NoMemoryError, APFullError, SupplicantTimeoutError, UnspecifiedFailureError:
		return true
	default:
		return false
	}
}

// Error is the single failure value reported by every fallible operation.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code.String()

	if e.Message != "" {
		msg = msg + ": " + e.Message
	}

	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

var (
	ErrInvalidParameter      = &Error{Code: InvalidParameterError}
	ErrNotSupported          = &Error{Code: NotSupportedError}
	ErrTimeout               = &Error{Code: TimeoutError}
	ErrReferenceNotBound     = &Error{Code: ReferenceNotBoundError}
	ErrIPCFailure            = &Error{Code: IPCFailureError}
	ErrOperationNotPermitted = &Error{Code: OperationNotPermittedError}
	ErrGeneric               = &Error{Code: GenericError}
)

// NewError builds an *Error with a formatted diagnostic.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code to an underlying failure. A nil err yields nil.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// AsError returns err as an *Error. Errors that carry no code become
// GenericError so callers always see exactly one cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code: GenericError,
		Err:  err,
	}
}

// CodeOf returns the code carried by err, NoError for nil.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}

	return AsError(err).Code
}

// IEEE 802.11 status codes carried in authentication and association
// responses.
var statusCodes = map[int]Code{
	1:  UnspecifiedFailureError,
	10: UnsupportedCapabilitiesError,
	11: ReassociationDeniedError,
	12: AssociationDeniedError,
	13: AuthenticationAlgorithmUnsupportedError,
	14: InvalidAuthenticationSequenceNumberError,
	15: ChallengeFailureError,
	16: TimeoutError,
	17: APFullError,
	18: UnsupportedRateSetError,
	25: ShortSlotUnsupportedError,
	26: DSSSOFDMUnsupportedError,
	27: HTFeaturesNotSupportedError,
	29: PCOTransitionTimeNotSupportedError,
	40: InvalidInformationElementError,
	41: InvalidGroupCipherError,
	42: InvalidPairwiseCipherError,
	43: InvalidAKMPError,
	44: UnsupportedRSNVersionError,
	45: InvalidRSNCapabilitiesError,
	46: CipherSuiteRejectedError,
	53: InvalidPMKError,
}

// CodeForStatus maps an IEEE 802.11 status code to a rejection code.
func CodeForStatus(status int) Code {
	if status == 0 {
		return NoError
	}

	if code, ok := statusCodes[status]; ok {
		return code
	}

	return AssociationDeniedError
}

// IEEE 802.11 reason codes carried in deauthentication frames.
var reasonCodes = map[int]Code{
	1:  UnspecifiedFailureError,
	2:  InvalidPMKError,
	13: InvalidInformationElementError,
	15: SupplicantTimeoutError,
	16: SupplicantTimeoutError,
	17: InvalidInformationElementError,
	18: InvalidGroupCipherError,
	19: InvalidPairwiseCipherError,
	20: InvalidAKMPError,
	21: UnsupportedRSNVersionError,
	22: InvalidRSNCapabilitiesError,
	23: EAPOLError,
	24: CipherSuiteRejectedError,
}

// CodeForReason maps an IEEE 802.11 reason code to a rejection code.
func CodeForReason(reason int) Code {
	if reason < 0 {
		reason = -reason
	}

	if reason == 0 {
		return NoError
	}

	if code, ok := reasonCodes[reason]; ok {
		return code
	}

	return AssociationDeniedError
}
