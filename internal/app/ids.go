package app

import "github.com/google/uuid"

// newID generates a random session ID.
func newID() string {
	return uuid.NewString()
}

// validID reports whether id has the shape newID produces.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
