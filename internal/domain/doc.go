// Package domain holds the core types and port interfaces of the karma
// service. It has no dependencies on adapters; adapters depend on it.
package domain
