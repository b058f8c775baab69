package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/metrics"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential attached to every request.
// Satisfied by *session.Session.
type TokenSource interface {
	Token() string
}

// Client issues authenticated requests against the storefront backend and
// normalizes every outcome into a typed error or a decoded payload. It never
// retries; each failure is terminal for the triggering operator action.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// envelope is the uniform success/message wrapper on every backend response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e envelope) failure() bool {
	return !e.Success
}

func (e envelope) message(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

type loginResponse struct {
	envelope
	Token string `json:"token"`
}

type listProductsResponse struct {
	envelope
	Products []domain.Product `json:"products"`
}

type listOrdersResponse struct {
	envelope
	Orders []domain.Order `json:"orders"`
}

// Login exchanges the admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/api/user/admin", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListProducts fetches the full catalog in server-returned order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp listProductsResponse
	if err := c.doJSON(ctx, "product_list", http.MethodGet, "/api/product/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// AddProduct submits a new product as a multipart form.
func (c *Client) AddProduct(ctx context.Context, form ProductForm) (string, error) {
	var resp envelope
	if err := c.doMultipart(ctx, "product_add", "/api/product/add", form, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// EditProduct replaces a product's fields; image slots are only replaced for
// positions carrying an upload.
func (c *Client) EditProduct(ctx context.Context, form ProductForm) (string, error) {
	var resp envelope
	if err := c.doMultipart(ctx, "product_edit", "/api/product/edit", form, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RemoveProduct hard-deletes a product by identifier.
func (c *Client) RemoveProduct(ctx context.Context, id string) (string, error) {
	body := map[string]string{"id": id}

	var resp envelope
	if err := c.doJSON(ctx, "product_remove", http.MethodPost, "/api/product/remove", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListOrders fetches all orders. The backend historically accepted both GET
// and POST for this endpoint; this client binds to GET.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var resp listOrdersResponse
	if err := c.doJSON(ctx, "order_list", http.MethodGet, "/api/order/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// UpdateOrderStatus transitions one order to a new fulfillment status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (string, error) {
	body := map[string]string{"orderId": orderID, "status": status}

	var resp envelope
	if err := c.doJSON(ctx, "order_status", http.MethodPost, "/api/order/status", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

type result interface {
	failure() bool
	message(fallback string) string
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, body any, out result) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewTransportError("encoding request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewTransportError("building request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(operation, req, out)
}

func (c *Client) doMultipart(ctx context.Context, operation, path string, form ProductForm, out result) error {
	body, contentType, err := form.encode()
	if err != nil {
		return apperrors.NewTransportError("encoding multipart form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return apperrors.NewTransportError("building request", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(operation, req, out)
}

func (c *Client) do(operation string, req *http.Request, out result) error {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "transport_error").Inc()
		c.logger.Warn("backend request failed",
			zap.String("operation", operation),
			zap.Error(err))
		return apperrors.NewTransportError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.BackendRequests.WithLabelValues(operation, "unauthorized").Inc()
		return apperrors.NewUnauthorizedError("session expired")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "transport_error").Inc()
		return apperrors.NewTransportError("reading response", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.BackendRequests.WithLabelValues(operation, "transport_error").Inc()
		return apperrors.NewTransportError(
			fmt.Sprintf("decoding response (status %d)", resp.StatusCode), err)
	}

	if out.failure() {
		metrics.BackendRequests.WithLabelValues(operation, "remote_error").Inc()
		c.logger.Warn("backend reported failure",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", out.message("")))
		return apperrors.NewRemoteError(out.message("request failed"))
	}

	metrics.BackendRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}
