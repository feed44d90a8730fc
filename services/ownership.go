package services

import "errors"

// AssertOwner fails unless requester is the author identified by authorID.
func AssertOwner(authorID uint, requester Viewer) error {
	if requester.IsAnonymous() {
		return ErrUnauthenticated
	}
	if authorID != requester.UserID {
		return ErrForbidden
	}
	return nil
}

// hideForbidden reports a failed ownership check as a missing record, so non-owners
// cannot tell a foreign record from an absent one.
func hideForbidden(err error) error {
	if errors.Is(err, ErrForbidden) {
		return ErrNotFound
	}
	return err
}
