// Package workers runs chat turns asynchronously.
//
// Submit publishes a request on the chat.requests topic. The pool holds a
// single subscription on that topic and feeds a bounded queue drained by a
// fixed number of worker goroutines, each running the turn through the agent
// service and publishing job.completed or job.failed on chat.events.
//
// The health monitor tracks worker status and records pool metrics.
package workers
