// Package database provides database client providers.
//
// Implementations:
//   - mongo: MongoDB client resolved from MONGODB_CONNECTION_STRING
package database
