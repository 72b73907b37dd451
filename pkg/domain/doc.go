// Package domain holds the value types shared by the ClimeAI agent runtime:
// conversation messages, tool descriptors, model responses and events.
package domain
