package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"storefront/internal/apiclient"
	"storefront/internal/cart"
	"storefront/internal/gallery"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/validation"
	"storefront/internal/workflow"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// statusOf maps an error onto the HTTP status returned to the console.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized
	case errors.Is(err, workflow.ErrTransitionNotAllowed), errors.Is(err, workflow.ErrInFlight),
		errors.Is(err, cart.ErrCheckoutInFlight):
		return fiber.StatusConflict
	case errors.Is(err, workflow.ErrMalformedUpload), errors.Is(err, cart.ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, workflow.ErrNoAttachment), errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, gallery.ErrIndexOutOfRange):
		return fiber.StatusNotFound
	}
	if code := apiclient.StatusCode(err); code >= fiber.StatusBadRequest {
		return code
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// respondError logs err and writes the error body. Validation failures carry per-field messages.
func respondError(c *fiber.Ctx, err error, message string) error {
	if ve, ok := validation.As(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  ve.Fields,
		})
	}
	log.Printf("Error %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(statusOf(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	log.Printf("Error parsing request for %s: %v", c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, c.Params(name))
	}
	return id, nil
}

// formUpload reads a file part of a multipart request. A missing part is not an error.
func formUpload(c *fiber.Ctx, field string) (*models.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return &models.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func current(c *fiber.Ctx) *session.Session {
	return middleware.CurrentSession(c)
}

// chain puts middleware in front of a handler without touching the middleware slice.
func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
