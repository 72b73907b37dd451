// Package events holds the event bus adapters.
//
// Implementations:
//   - redis: Redis Streams. Work topics such as chat.requests use consumer
//     groups so each event is handled once; broadcast topics such as
//     chat.events are read with XREAD so every subscriber sees every event.
//   - memory: in-process handlers for tests and single-instance runs
package events
