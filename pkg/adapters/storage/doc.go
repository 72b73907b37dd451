// Package storage provides conversation store implementations.
//
// Implementations:
//   - mongo: one document per session in the conversations collection
//   - redis: JSON list per session with TTL
//   - memory: In-memory for testing
package storage
