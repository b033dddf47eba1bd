package predictionhub

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
	"github.com/riskibarqy/squad-predictor/internal/platform/resilience"
)

var errPredictionHubTransient = crerr.New("prediction hub transient failure")

type PublisherConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher pushes completed squads to the prediction backend. The local
// squad store stays authoritative; callers treat these calls as best-effort.
type Publisher struct {
	client         *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type sidePayload struct {
	FormationID string   `json:"formation_id"`
	PlayerIDs   []string `json:"player_ids"`
}

type submitPayload struct {
	MatchID string       `json:"match_id"`
	UserID  string       `json:"user_id"`
	TakenAt time.Time    `json:"taken_at"`
	Attack  sidePayload  `json:"attack"`
	Defense *sidePayload `json:"defense,omitempty"`
}

type invalidatePayload struct {
	MatchID string `json:"match_id"`
	UserID  string `json:"user_id"`
}

func (p *Publisher) Submit(ctx context.Context, matchID, userID string, snapshot squad.Snapshot) error {
	payload := submitPayload{
		MatchID: matchID,
		UserID:  userID,
		TakenAt: snapshot.TakenAt,
		Attack: sidePayload{
			FormationID: snapshot.Attack.FormationID,
			PlayerIDs:   snapshot.Attack.PlayerIDs,
		},
	}
	if snapshot.Defense != nil {
		payload.Defense = &sidePayload{
			FormationID: snapshot.Defense.FormationID,
			PlayerIDs:   snapshot.Defense.PlayerIDs,
		}
	}

	return p.post(ctx, "/v1/predictions", payload)
}

func (p *Publisher) Invalidate(ctx context.Context, matchID, userID string) error {
	return p.post(ctx, "/v1/predictions/invalidate", invalidatePayload{MatchID: matchID, UserID: userID})
}

func (p *Publisher) post(ctx context.Context, path string, payload any) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "prediction hub circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("prediction hub is temporarily unavailable: %w", err)
		}
	}

	if p.baseURL == "" {
		return crerr.New("prediction hub base url is not configured")
	}
	fullURL := p.baseURL + path

	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal prediction payload")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("predictionhub.url", fullURL),
			attribute.String("predictionhub.request_curl_preview", buildCurlPreview(fullURL, body)),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(body)

	deadline := time.Now().Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		callErr := fmt.Errorf("%w: post %s: %v", errPredictionHubTransient, fullURL, err)
		p.recordCircuitResult(callErr)
		return callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := strings.TrimSpace(string(resp.Body()))
		if isRetryableStatus(status) {
			callErr := fmt.Errorf("%w: post %s status=%d body=%s", errPredictionHubTransient, fullURL, status, raw)
			p.recordCircuitResult(callErr)
			return callErr
		}
		callErr := fmt.Errorf("post %s status=%d body=%s", fullURL, status, raw)
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "prediction hub request accepted", "path", path, "status", status)
	p.recordCircuitResult(nil)
	return nil
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errPredictionHubTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func buildCurlPreview(fullURL string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(fullURL))
	_, _ = buf.WriteString(" -H 'Authorization: Bearer ***' -H 'Content-Type: application/json' -d ")
	_, _ = buf.WriteString(shellQuote(truncateForLog(string(body), 2048)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
