package apiclient

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Resource is a conventional CRUD endpoint of the backend (/products, /orders, ...).
type Resource[T any] struct {
	client *Client
	path   string
}

func (r *Resource[T]) item(id int) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// List retrieves every record.
func (r *Resource[T]) List(token string) ([]T, error) {
	var out []T
	if err := r.client.send(fiber.MethodGet, r.path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get retrieves a single record by its ID.
func (r *Resource[T]) Get(token string, id int) (*T, error) {
	var out T
	if err := r.client.send(fiber.MethodGet, r.item(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new record. body is a JSON value or a *Form.
func (r *Resource[T]) Create(token string, body interface{}) (*T, error) {
	var out T
	if err := r.client.send(fiber.MethodPost, r.path, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a record. body is a JSON value or a *Form.
func (r *Resource[T]) Update(token string, id int, body interface{}) (*T, error) {
	var out T
	if err := r.client.send(fiber.MethodPut, r.item(id), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record by its ID.
func (r *Resource[T]) Delete(token string, id int) error {
	return r.client.send(fiber.MethodDelete, r.item(id), token, nil, nil)
}
