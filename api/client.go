// Package api implements the REST client for the storefront backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront_cli/domain"
)

// Client talks to the storefront backend over HTTP/JSON. All calls take
// a context and return typed errors from the domain package; failures
// are never retried here, a failed call needs a user-initiated repeat.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient constructs a Client for the given base URL, e.g.
// "http://localhost:8082/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken sets the bearer token attached to authenticated calls.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

// errorBody is the backend's failure payload shape.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

// cartItemRequest is the upsert body for POST /cart.
type cartItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type checkoutRequest struct {
	AddressID string `json:"addressId"`
}

// ListProducts fetches the full product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, "list products", http.MethodGet, "/products", false, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchProducts fetches the products matching the given text. A 404
// from the backend means nothing matched and maps to NoProductsError.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	path := "/products/search?value=" + url.QueryEscape(query)
	var out []domain.Product
	if err := c.do(ctx, "search products", http.MethodGet, path, false, nil, &out); err != nil {
		var se *domain.ServiceError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, domain.NewNoProductsError(query)
		}
		return nil, err
	}
	return out, nil
}

// FetchCart fetches the authoritative cart entries for the logged-in
// user.
func (c *Client) FetchCart(ctx context.Context) ([]domain.CartEntry, error) {
	var out []domain.CartEntry
	if err := c.do(ctx, "fetch cart", http.MethodGet, "/cart", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCartItem sets the quantity of a product in the cart and returns
// the server's full updated entry list. The quantity is sent as-is; the
// backend decides what zero or negative values mean.
func (c *Client) UpsertCartItem(ctx context.Context, productID string, qty int) ([]domain.CartEntry, error) {
	var out []domain.CartEntry
	body := cartItemRequest{ProductID: productID, Qty: qty}
	if err := c.do(ctx, "upsert cart item", http.MethodPost, "/cart", true, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login authenticates and returns the session token and username.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	body := credentialsRequest{Username: username, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", false, body, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := credentialsRequest{Username: username, Password: password}
	return c.do(ctx, "register", http.MethodPost, "/auth/register", false, body, nil)
}

// Checkout places an order for the current cart contents.
func (c *Client) Checkout(ctx context.Context, addressID string) error {
	body := checkoutRequest{AddressID: addressID}
	return c.do(ctx, "checkout", http.MethodPost, "/cart/checkout", true, body, nil)
}

// do issues one request and decodes the response into out (if non-nil).
// Transport failures and non-2xx statuses come back as ServiceError.
func (c *Client) do(ctx context.Context, op, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return domain.NewServiceError(op, 0, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewServiceError(op, 0, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Error("request failed", "op", op, "error", err)
		return domain.NewServiceError(op, 0, err)
	}
	defer resp.Body.Close()

	slog.Debug("request done",
		"op", op,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-Id"),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewServiceError(op, resp.StatusCode, errors.New(failureMessage(resp)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewServiceError(op, 0, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

// failureMessage pulls the backend's message out of a failure body,
// falling back to the HTTP status text.
func failureMessage(resp *http.Response) string {
	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return http.StatusText(resp.StatusCode)
}
