package auth

import (
	"civicfix-be/apperrors"
)

// Capability is a named permission checked before an operation runs.
type Capability string

const (
	CapReportIssue   Capability = "report_issue"
	CapReadAllIssues Capability = "read_all_issues"
	CapReadOwnIssues Capability = "read_own_issues"
	CapMutateIssue   Capability = "mutate_issue"
	CapDeleteIssue   Capability = "delete_issue"
)

// Authorize decides whether the principal holds the capability. For
// read_own_issues the owner id of the target resource must be supplied and
// must match the principal. A denial is a hard stop: callers must not reach
// the store after a non-nil return.
//
// Capabilities derive from the verified principal only, never from request
// payload content.
func Authorize(p Principal, cap Capability, resourceOwnerID ...string) error {
	switch cap {
	case CapReportIssue:
		if p.ID == "" {
			return apperrors.NewUnauthorizedError("authentication required")
		}
		return nil
	case CapReadAllIssues:
		if !p.Role.IsStaff() {
			return apperrors.NewForbiddenError("admin or staff access required")
		}
		return nil
	case CapReadOwnIssues:
		if len(resourceOwnerID) == 0 || resourceOwnerID[0] == "" {
			return apperrors.NewForbiddenError("resource owner unknown")
		}
		if p.ID != resourceOwnerID[0] {
			return apperrors.NewForbiddenError("not the owner of this resource")
		}
		return nil
	case CapMutateIssue:
		if !p.Role.IsStaff() {
			return apperrors.NewForbiddenError("only admin or staff may update issues")
		}
		return nil
	case CapDeleteIssue:
		if !p.Role.IsStaff() {
			return apperrors.NewForbiddenError("only admin or staff may delete issues")
		}
		return nil
	default:
		return apperrors.NewForbiddenError("unknown capability", string(cap))
	}
}

// CanAccessIssue reports whether the principal may read a single issue:
// admin/staff always, the reporting citizen for their own issues.
func CanAccessIssue(p Principal, ownerID string) bool {
	if p.Role.IsStaff() {
		return true
	}
	return p.ID == ownerID
}
