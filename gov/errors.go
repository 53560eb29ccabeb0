package gov

import "fmt"

// ErrorCode is a closed set of governance error kinds (spec.md §7).
type ErrorCode string

const (
	ErrDecode           ErrorCode = "GOV_ERR_DECODE"
	ErrPolicyName       ErrorCode = "GOV_ERR_POLICY_NAME"
	ErrPolicySuperblock ErrorCode = "GOV_ERR_POLICY_SUPERBLOCK"
	ErrPolicyAmount     ErrorCode = "GOV_ERR_POLICY_AMOUNT"
	ErrPolicyAddress    ErrorCode = "GOV_ERR_POLICY_ADDRESS"
	ErrPolicyType       ErrorCode = "GOV_ERR_POLICY_TYPE"
	ErrPolicyVersion    ErrorCode = "GOV_ERR_POLICY_VERSION"
	ErrPolicyTooLarge   ErrorCode = "GOV_ERR_POLICY_TOO_LARGE"

	ErrSignature    ErrorCode = "GOV_ERR_SIGNATURE"
	ErrReplay       ErrorCode = "GOV_ERR_REPLAY"
	ErrMissingProp  ErrorCode = "GOV_ERR_MISSING_PROPOSAL"
	ErrMissingUtxo  ErrorCode = "GOV_ERR_MISSING_UTXO"
	ErrSpentUtxo    ErrorCode = "GOV_ERR_SPENT_UTXO"
	ErrCutoffMissed ErrorCode = "GOV_ERR_CUTOFF_MISSED"

	ErrIO       ErrorCode = "GOV_ERR_IO"
	ErrShutdown ErrorCode = "GOV_ERR_SHUTDOWN"
)

// GovError carries a closed error code plus a human-readable reason.
// Record-level validation failures (ErrPolicy*, ErrSignature, ErrReplay,
// ErrMissingProp, ErrMissingUtxo, ErrSpentUtxo, ErrCutoffMissed) are
// swallowed by the extractor per spec.md §7 — they never escape
// process_block. Only ErrIO and ErrShutdown are surfaced to the
// loader's caller.
type GovError struct {
	Code ErrorCode
	Msg  string
}

func (e *GovError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func govErr(code ErrorCode, msg string) error {
	return &GovError{Code: code, Msg: msg}
}

// CodeOf extracts the ErrorCode from err, if err is a *GovError.
func CodeOf(err error) (ErrorCode, bool) {
	ge, ok := err.(*GovError)
	if !ok || ge == nil {
		return "", false
	}
	return ge.Code, true
}
