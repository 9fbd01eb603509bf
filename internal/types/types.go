// Package types contains common generic types used across the module packages.
package types

// ContextKey is a type of keys for values stored in a context.
type ContextKey string
