// Package domain contains core concepts of the messaging system.
// No runtime, network, or storage logic should be added here.
package domain

// User is an authenticated identity. Immutable once created; the
// credential hash never leaves the repository layer.
type User struct {
	ID       string
	Username string
}
