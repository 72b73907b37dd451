// Package noop provides a MetricsCollector that discards everything.
package noop

import "time"

// Collector discards all metrics
type Collector struct{}

func (Collector) IncProviderSelected(string)                {}
func (Collector) IncLLMCalls(string, string, string)        {}
func (Collector) ObserveLLMLatency(string, time.Duration)   {}
func (Collector) IncLLMTokens(string, string, int)          {}
func (Collector) IncToolExecutions(string, string)          {}
func (Collector) ObserveToolDuration(string, time.Duration) {}
func (Collector) IncChatRequests(string)                    {}
func (Collector) SetQueueDepth(string, int)                 {}
func (Collector) RecordWorkerPoolStatus(int, int, int)      {}
