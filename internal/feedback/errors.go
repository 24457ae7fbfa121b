// Package feedback implements the toggle engine behind likes, favorites and
// saves. Each toggle flips the presence of one feedback record and keeps the
// denormalized counter on the target entity in step, using only conditional
// single-document writes — no cross-collection transactions.
package feedback

import "errors"

// Sentinel errors returned by Toggle. Handlers translate them to HTTP
// statuses; anything else is an unexpected storage failure.
var (
	// ErrInvalidKind is returned when the feedback kind is not in the
	// enumeration accepted by the target's type.
	ErrInvalidKind = errors.New("feedback kind not valid for this target")

	// ErrTargetNotFound is returned when the target entity does not exist or
	// has been deleted. No writes are attempted in that case.
	ErrTargetNotFound = errors.New("feedback target not found")
)
