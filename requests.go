package viewstate

import "github.com/google/uuid"

// Outcome is the observed state of one tracked backend request.
type Outcome string

const (
	// OutcomePending marks a request still in flight.
	OutcomePending Outcome = "pending"
	// OutcomeSuccess marks a request that completed normally.
	OutcomeSuccess Outcome = "success"
	// OutcomeError marks a request that failed; ErrorCode classifies it.
	OutcomeError Outcome = "error"
)

// ErrorCode classifies a failed request, mirroring the tracking API's error
// taxonomy.
type ErrorCode string

const (
	// ErrorCodeResourceDoesNotExist is the one classification the view layer
	// elevates to a user-visible not-found state.
	ErrorCodeResourceDoesNotExist ErrorCode = "RESOURCE_DOES_NOT_EXIST"
	// ErrorCodeInternalError covers unclassified server failures.
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeInvalidParameterValue covers request validation failures.
	ErrorCodeInvalidParameterValue ErrorCode = "INVALID_PARAMETER_VALUE"
	// ErrorCodePermissionDenied covers authorization failures.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// RequestDescriptor is a read-only snapshot of one tracked request, supplied
// by the networking layer on every evaluation.
type RequestDescriptor struct {
	ID        string
	Outcome   Outcome
	ErrorCode ErrorCode
}

// NotFound reports whether the request failed specifically because the
// requested resource does not exist.
func (r RequestDescriptor) NotFound() bool {
	return r.Outcome == OutcomeError && r.ErrorCode == ErrorCodeResourceDoesNotExist
}

// IsNotFound reduces the live request snapshot to a single view decision: it
// returns true iff at least one request whose ID appears in interestingIDs
// failed with the resource-does-not-exist classification. A view typically has
// several requests in flight (parent and child resources); the not-found state
// should render as soon as any relevant one reports the resource missing, so
// this is an OR-reduction over that one error class. Pending, successful, and
// otherwise-failed requests never contribute.
func IsNotFound(requests []RequestDescriptor, interestingIDs []string) bool {
	if len(requests) == 0 || len(interestingIDs) == 0 {
		return false
	}
	interesting := make(map[string]struct{}, len(interestingIDs))
	for _, id := range interestingIDs {
		interesting[id] = struct{}{}
	}
	for _, request := range requests {
		if _, ok := interesting[request.ID]; !ok {
			continue
		}
		if request.NotFound() {
			return true
		}
	}
	return false
}

// NewRequestID mints the identifier the networking layer tags a request with
// so views can find it again in the snapshot.
func NewRequestID() string {
	return uuid.NewString()
}
