package llm

import (
	"net/http"
	"strings"
	"time"

	"github.com/aescanero/climeai/pkg/adapters/metrics/noop"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"
	"go.uber.org/zap"
)

const defaultHTTPTimeout = 60 * time.Second

// transport carries what the SDK-backed provider clients share: the endpoint
// and HTTP client handed to the SDK, plus logging and metrics per call
type transport struct {
	provider string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	metrics  ports.MetricsCollector
}

func newTransport(provider, defaultBaseURL string, opts ClientOptions) transport {
	t := transport{
		provider: provider,
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		client:   opts.HTTPClient,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.metrics == nil {
		t.metrics = noop.Collector{}
	}
	return t
}

// observe records metrics and logs for one model call
func (t transport) observe(model string, start time.Time, resp *domain.Response, err error) {
	duration := time.Since(start)
	t.metrics.ObserveLLMLatency(model, duration)

	if err != nil {
		t.metrics.IncLLMCalls(t.provider, model, "error")
		t.logger.Error("LLM call failed",
			zap.String("provider", t.provider),
			zap.String("model", model),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	t.metrics.IncLLMCalls(t.provider, model, "success")
	t.metrics.IncLLMTokens(model, "input", resp.Usage.InputTokens)
	t.metrics.IncLLMTokens(model, "output", resp.Usage.OutputTokens)
	t.logger.Debug("LLM call completed",
		zap.String("provider", t.provider),
		zap.String("model", model),
		zap.Int("tool_calls", len(resp.ToolCalls)),
		zap.Duration("duration", duration))
}

func copyTools(tools []domain.Tool) []domain.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]domain.Tool, len(tools))
	copy(out, tools)
	return out
}

func toolParameters(tool domain.Tool) map[string]interface{} {
	if tool.Parameters != nil {
		return tool.Parameters
	}
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
