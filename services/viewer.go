package services

// Viewer is the identity acting on a request. The zero value is an anonymous visitor.
type Viewer struct {
	UserID   uint
	Username string
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer { return Viewer{} }

func (v Viewer) IsAnonymous() bool { return v.UserID == 0 }

// Is reports whether the viewer is the user with the given id.
func (v Viewer) Is(userID uint) bool {
	return !v.IsAnonymous() && v.UserID == userID
}
