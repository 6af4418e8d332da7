package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"forma-web/internal/domain"
	"forma-web/internal/domain/model"
	"forma-web/internal/domain/ports/adapter"
	"forma-web/internal/infra/metrics"
)

var _ adapter.StatusFetcher = (*Client)(nil)

// Client reads generation job status from the backend over HTTP. One
// authenticated GET per call; never retries, never mutates tracker state.
type Client struct {
	baseURL string
	tokens  adapter.TokenProvider
	client  *http.Client
	log     *zerolog.Logger
}

func NewClient(baseURL string, tokens adapter.TokenProvider, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// FetchStatus performs one authenticated status read for recordID.
func (c *Client) FetchStatus(ctx context.Context, recordID string) (*model.GenerationStatus, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		// No token, no network call.
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/generation-status/%s", c.baseURL, url.PathEscape(recordID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveFetchLatency(int(time.Since(start)/time.Millisecond), false)
		return nil, &domain.RequestFailedError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveFetchLatency(latencyMs, false)
		return nil, &domain.RequestFailedError{Detail: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveFetchLatency(latencyMs, false)
		return nil, &domain.RequestFailedError{StatusCode: resp.StatusCode}
	}

	st, err := decodeStatus(recordID, body)
	if err != nil {
		metrics.ObserveFetchLatency(latencyMs, false)
		c.log.Debug().Err(err).Str("record_id", recordID).Msg("status body did not validate")
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	metrics.ObserveFetchLatency(latencyMs, true)
	return st, nil
}

// statusPayload is the loosely typed wire shape. The backend emits
// camelCase keys except the failure detail, which arrives as
// error_message; both spellings are accepted.
type statusPayload struct {
	Status          *string `json:"status"`
	TaskID          string  `json:"taskId"`
	ErrorMessage    string  `json:"errorMessage"`
	ErrorMessageAlt string  `json:"error_message"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// decodeStatus validates the payload shape before trusting it. A missing
// status field is malformed; an unrecognized status value is not (it maps
// to GenerationUnknown).
func decodeStatus(recordID string, body []byte) (*model.GenerationStatus, error) {
	var p statusPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Status == nil {
		return nil, errors.New("missing status field")
	}

	st := &model.GenerationStatus{
		RecordID: recordID,
		State:    model.ParseGenerationState(*p.Status),
		TaskID:   p.TaskID,
	}
	st.ErrorMessage = p.ErrorMessage
	if st.ErrorMessage == "" {
		st.ErrorMessage = p.ErrorMessageAlt
	}

	if p.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("createdAt: %w", err)
		}
		st.CreatedAt = t
	}
	if p.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339, p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("updatedAt: %w", err)
		}
		st.UpdatedAt = t
	}
	return st, nil
}
