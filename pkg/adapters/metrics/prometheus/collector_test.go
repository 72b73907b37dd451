package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsSelectionsAndCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.IncProviderSelected("groq")
	c.IncProviderSelected("groq")
	c.IncProviderSelected("fake")
	c.IncLLMCalls("groq", "llama3-70b-8192", "success")
	c.ObserveLLMLatency("llama3-70b-8192", 250*time.Millisecond)
	c.IncLLMTokens("llama3-70b-8192", "input", 12)

	if got := testutil.ToFloat64(c.providerSelections.WithLabelValues("groq")); got != 2 {
		t.Fatalf("expected 2 groq selections, got %v", got)
	}
	if got := testutil.ToFloat64(c.providerSelections.WithLabelValues("fake")); got != 1 {
		t.Fatalf("expected 1 fake selection, got %v", got)
	}
	if got := testutil.ToFloat64(c.llmTokens.WithLabelValues("llama3-70b-8192", "input")); got != 12 {
		t.Fatalf("expected 12 input tokens, got %v", got)
	}
}

func TestCollectorWorkerPoolStatus(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordWorkerPoolStatus(3, 1, 0)

	if got := testutil.ToFloat64(c.workerPoolIdle); got != 3 {
		t.Fatalf("expected 3 idle, got %v", got)
	}
	if got := testutil.ToFloat64(c.workerPoolBusy); got != 1 {
		t.Fatalf("expected 1 busy, got %v", got)
	}
}
