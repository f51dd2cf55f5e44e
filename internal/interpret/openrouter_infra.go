package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "mistralai/mistral-7b-instruct"
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration

	// идентификация приложения для OpenRouter
	Referer string
	Title   string
}

type OpenRouterClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *zap.SugaredLogger
}

func NewOpenRouterClient(cfg OpenRouterConfig, log *zap.SugaredLogger) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	if cfg.Title != "" {
		headers["X-Title"] = cfg.Title
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}

	return &OpenRouterClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

// Complete — ровно одна попытка, без ретраев
func (c *OpenRouterClient) Complete(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec := &responseRecord{}
	ctx = context.WithValue(ctx, responseRecordKey{}, rec)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		// пустой ответ допустим только если 2xx действительно пришёл
		if rec.succeeded() && !isUpstreamStatus(err) && !isTimeout(err) && isMalformedEnvelope(err) {
			c.log.Warnw("[openrouter] malformed response envelope", "model", c.model, "err", err)
			return "", nil
		}
		return "", classify(err, rec)
	}

	if len(resp.Choices) == 0 {
		c.log.Warnw("[openrouter] no choices in response", "model", c.model)
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error, rec *responseRecord) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return byStatus(apiErr.HTTPStatusCode, rec.bodyOr(apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return byStatus(reqErr.HTTPStatusCode, rec.bodyOr(reqErr.Error()), err)
	}

	if isTimeout(err) {
		return timeoutError(err)
	}
	return networkError(err)
}

func isUpstreamStatus(err error) bool {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	return errors.As(err, &apiErr) || errors.As(err, &reqErr)
}

func byStatus(status int, body string, cause error) error {
	switch {
	case status >= 400 && status < 500:
		return clientRequestError(status, body)
	case status >= 500 && status < 600:
		return serviceUnavailableError(status, cause)
	}
	return networkError(cause)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// тело ответа 2xx не разобралось как JSON
func isMalformedEnvelope(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF)
}

// тело ошибки 4xx в диагностике ограничено
const maxErrorBody = 8 << 10

type responseRecordKey struct{}

// responseRecord — что транспорт увидел в ответе на один запрос
type responseRecord struct {
	mu     sync.Mutex
	status int
	body   string
}

func (r *responseRecord) succeeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status >= 200 && r.status < 300
}

func (r *responseRecord) bodyOr(fallback string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.body == "" {
		return fallback
	}
	return r.body
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	rec, ok := req.Context().Value(responseRecordKey{}).(*responseRecord)
	if !ok {
		return resp, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.status = resp.StatusCode

	// сырое тело 4xx уходит в диагностику целиком, клиенту отдаём копию
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		rec.body = strings.TrimSpace(string(raw))
		resp.Body = io.NopCloser(bytes.NewReader(raw))
	}
	return resp, nil
}
