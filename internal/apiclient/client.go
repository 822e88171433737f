// Package apiclient is the typed client of the storefront REST backend.
//
// Every response is wrapped as {success, message, data}; the client unwraps
// data uniformly and turns failures into *APIError. Authenticated calls carry
// "Authorization: Bearer <token>".
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Config holds backend connection details.
type Config struct {
	BaseURL string
	// Timeout bounds one request. Zero waits for the backend indefinitely.
	Timeout time.Duration
}

// Client talks to the REST backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fiber.Client

	Products   *Resource[models.Product]
	Categories *Resource[models.Category]
	Roles      *Resource[models.Role]
	Users      *Resource[models.User]
	Orders     *Resource[models.Order]
	Carts      *Resource[models.CartRecord]
	CartItems  *Resource[models.CartItemRecord]
}

// New creates a new backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
	c.Products = &Resource[models.Product]{client: c, path: "/products"}
	c.Categories = &Resource[models.Category]{client: c, path: "/categories"}
	c.Roles = &Resource[models.Role]{client: c, path: "/roles"}
	c.Users = &Resource[models.User]{client: c, path: "/users"}
	c.Orders = &Resource[models.Order]{client: c, path: "/orders"}
	c.Carts = &Resource[models.CartRecord]{client: c, path: "/carts"}
	c.CartItems = &Resource[models.CartItemRecord]{client: c, path: "/cartitems"}
	return c, nil
}

// APIError is a backend rejection: a non-2xx status or success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Authenticate exchanges credentials for a token and the denormalized user fields.
func (c *Client) Authenticate(creds models.Credentials) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.send(fiber.MethodPost, "/auth", "", creds, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{StatusCode: fiber.StatusUnauthorized, Message: "backend returned no token"}
	}
	return &out, nil
}

// PublicCategories lists categories without authentication.
func (c *Client) PublicCategories() ([]models.Category, error) {
	var out []models.Category
	if err := c.send(fiber.MethodGet, "/public/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicCatalogs lists categories with their products without authentication.
func (c *Client) PublicCatalogs() ([]models.Catalog, error) {
	var out []models.Catalog
	if err := c.send(fiber.MethodGet, "/public/catalogs", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return c.http.Post(url)
	case fiber.MethodPut:
		return c.http.Put(url)
	case fiber.MethodPatch:
		return c.http.Patch(url)
	case fiber.MethodDelete:
		return c.http.Delete(url)
	default:
		return c.http.Get(url)
	}
}

// send issues one request. body may be nil, a *Form (multipart) or any JSON value.
func (c *Client) send(method, path, token string, body, out interface{}) error {
	resource := resourceLabel(path)
	a := c.agent(method, c.baseURL+path)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if c.timeout > 0 {
		a.Timeout(c.timeout)
	}
	switch b := body.(type) {
	case nil:
	case *Form:
		payload, contentType, err := b.encode()
		if err != nil {
			fiber.ReleaseAgent(a)
			return fmt.Errorf("failed to build multipart body for %s %s: %w", method, path, err)
		}
		a.ContentType(contentType).Body(payload)
	default:
		a.JSON(b)
	}

	start := time.Now()
	code, resp, errs := a.Bytes()
	metrics.BackendLatency.WithLabelValues(method, resource).Observe(time.Since(start).Seconds())
	if len(errs) > 0 {
		metrics.BackendRequests.WithLabelValues(method, resource, "error").Inc()
		return fmt.Errorf("%s %s failed: %w", method, path, errors.Join(errs...))
	}
	metrics.BackendRequests.WithLabelValues(method, resource, strconv.Itoa(code)).Inc()
	return decodeEnvelope(code, resp, out)
}

func decodeEnvelope(code int, resp []byte, out interface{}) error {
	var env models.Envelope
	if err := json.Unmarshal(resp, &env); err != nil {
		if code >= fiber.StatusBadRequest {
			return &APIError{StatusCode: code, Message: strings.TrimSpace(string(resp))}
		}
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	if code >= fiber.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %T from backend response: %w", out, err)
	}
	return nil
}

// resourceLabel drops numeric path segments so metrics stay low-cardinality.
func resourceLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	kept := parts[:0]
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}
