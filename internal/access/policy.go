// Package access centralizes ownership decisions so the error-kind policy
// lives in one place: a non-owned sender wallet on transfer initiation is
// Forbidden (the two parties already exchanged wallet names to transact),
// while every view path hides existence behind NotFound.
package access

import "errors"

// ErrNotOwner indicates the principal does not own the sender wallet. Mapped
// to HTTP 403 by handlers.
var ErrNotOwner = errors.New("principal does not own sender wallet")

// Policy decides what a principal may initiate or see.
type Policy struct{}

// AuthorizeTransfer permits transfer initiation only from a wallet the
// principal owns.
func (Policy) AuthorizeTransfer(principalID, senderOwnerID string) error {
	if principalID != senderOwnerID {
		return ErrNotOwner
	}
	return nil
}

// CanView reports whether the principal owns at least one of the given
// resources. Callers translate a false result to their NotFound error so
// non-owned and absent resources are indistinguishable.
func (Policy) CanView(principalID string, ownerIDs ...string) bool {
	for _, owner := range ownerIDs {
		if owner == principalID {
			return true
		}
	}
	return false
}
