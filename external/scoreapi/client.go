package scoreapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/squad-predictor/internal/platform/logging"
	"github.com/riskibarqy/squad-predictor/internal/platform/resilience"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.scorehub.io/v1/football"
	maxResponseBytes   = 4 << 20
	defaultHTTPTimeout = 15 * time.Second
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errTransient = crerr.New("score api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the score provider. It implements usecase.LineupProvider.
// Requests go through a circuit breaker and are deduplicated per URL, so a
// burst of users opening the same match costs one upstream call.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type lineupEnvelope struct {
	Data *struct {
		Formation string          `json:"formation"`
		Starting  []playerPayload `json:"starting"`
		Bench     []playerPayload `json:"bench"`
	} `json:"data"`
}

type squadEnvelope struct {
	Data struct {
		Players []playerPayload `json:"players"`
	} `json:"data"`
}

type playerPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"team_id"`
	Position  string `json:"position"`
	Rating    int    `json:"rating"`
	Injured   bool   `json:"injured"`
	Suspended bool   `json:"suspended"`
}

// FetchLineup returns the official pre-match lineup, or nil when the
// provider has not published one for this match.
func (c *Client) FetchLineup(ctx context.Context, matchID string) (*usecase.ExternalLineup, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var envelope lineupEnvelope
	found, err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/lineup", &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch lineup match_id=%s: %w", matchID, err)
	}
	if !found || envelope.Data == nil || len(envelope.Data.Starting) == 0 {
		return nil, nil
	}

	return &usecase.ExternalLineup{
		FormationID: strings.TrimSpace(envelope.Data.Formation),
		Starting:    mapPlayers(envelope.Data.Starting),
		Substitutes: mapPlayers(envelope.Data.Bench),
	}, nil
}

// FetchSquad returns the full registered player pool for both teams of a
// match.
func (c *Client) FetchSquad(ctx context.Context, matchID string) ([]usecase.ExternalPlayer, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var envelope squadEnvelope
	found, err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/squad", &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch squad match_id=%s: %w", matchID, err)
	}
	if !found {
		return nil, fmt.Errorf("fetch squad match_id=%s: provider has no roster", matchID)
	}

	return mapPlayers(envelope.Data.Players), nil
}

func mapPlayers(payload []playerPayload) []usecase.ExternalPlayer {
	out := make([]usecase.ExternalPlayer, 0, len(payload))
	for _, p := range payload {
		out = append(out, usecase.ExternalPlayer{
			ID:        strings.TrimSpace(p.ID),
			Name:      strings.TrimSpace(p.Name),
			TeamID:    strings.TrimSpace(p.TeamID),
			Position:  p.Position,
			Rating:    p.Rating,
			Injured:   p.Injured,
			Suspended: p.Suspended,
		})
	}
	return out
}

// doJSON runs a GET through the breaker and singleflight. The second return
// is false when the provider answered 404, which callers treat as absence
// rather than failure.
func (c *Client) doJSON(ctx context.Context, path string, target any) (bool, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "score api circuit breaker rejected request", "state", c.breaker.State())
			return false, fmt.Errorf("%w: score provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return false, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected response payload type %T", out)
	}
	if raw == nil {
		return false, nil
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode provider payload: %w", err)
	}

	return true, nil
}

// executeRequest retries transient failures with a linear backoff. A nil
// byte slice with nil error means the resource does not exist upstream.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode == http.StatusNotFound:
				return nil, nil
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "score api request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiTokenParamRegex.ReplaceAllString(fullURL, "api_token=REDACTED")
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
