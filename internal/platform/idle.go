package platform

import "studyforest/internal/core/session"

// NewIdleChecker returns the idle detector for this OS. Where detection is not
// possible it reports session.ErrIdleUnsupported.
func NewIdleChecker() session.IdleChecker {
	return newIdleChecker()
}
