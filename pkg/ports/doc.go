// Package ports defines the interfaces between the agent application layer
// and its adapters (model clients, storage, events, metrics).
package ports
