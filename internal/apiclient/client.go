package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

const (
	DefaultListLimit  = 100
	AdminListLimit    = 1000
	defaultReqTimeout = 10 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultReqTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run after every 401 response.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func validate(req any) error {
	if err := transport.Validate(req); err != nil {
		return &ValidationError{Detail: transport.Detail(err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api_request_failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api_request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readDetail accepts {"detail": "msg"} and the list form [{"msg": ...}].
func readDetail(r io.Reader) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(skip, limit int) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	return "?" + q.Encode()
}

func sweetPath(id uint) string {
	return "/api/sweets/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) ListSweets(ctx context.Context, skip, limit int) (*transport.SweetList, error) {
	var out transport.SweetList
	if err := c.do(ctx, http.MethodGet, "/api/sweets"+pageQuery(skip, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSweet(ctx context.Context, id uint) (*transport.Sweet, error) {
	var out transport.Sweet
	if err := c.do(ctx, http.MethodGet, sweetPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchSweets(ctx context.Context, req transport.SearchRequest) (*transport.SweetList, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.SweetList
	if err := c.do(ctx, http.MethodPost, "/api/sweets/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSweet(ctx context.Context, req transport.CreateSweetRequest) (*transport.Sweet, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.Sweet
	if err := c.do(ctx, http.MethodPost, "/api/sweets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSweet(ctx context.Context, id uint, req transport.UpdateSweetRequest) (*transport.Sweet, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.Sweet
	if err := c.do(ctx, http.MethodPut, sweetPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSweet(ctx context.Context, id uint) (*transport.OperationResponse, error) {
	var out transport.OperationResponse
	if err := c.do(ctx, http.MethodDelete, sweetPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Purchase(ctx context.Context, id uint, quantity int) (*transport.PurchaseResponse, error) {
	req := transport.PurchaseRequest{Quantity: quantity}
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.PurchaseResponse
	if err := c.do(ctx, http.MethodPost, sweetPath(id)+"/purchase", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Restock(ctx context.Context, id uint, quantity int) (*transport.Sweet, error) {
	req := transport.RestockRequest{Quantity: quantity}
	if err := validate(req); err != nil {
		return nil, err
	}
	var out transport.Sweet
	if err := c.do(ctx, http.MethodPost, sweetPath(id)+"/restock", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Purchases(ctx context.Context, skip, limit int) (*transport.PurchaseList, error) {
	var out transport.PurchaseList
	if err := c.do(ctx, http.MethodGet, "/api/purchases"+pageQuery(skip, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*transport.HealthResponse, error) {
	var out transport.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
