package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DecodeProduct reads a product form. A multipart request is forwarded as
// multipart with its image part; anything else is read as JSON.
func DecodeProduct(c *fiber.Ctx) (interface{}, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		var p models.Product
		if err := c.BodyParser(&p); err != nil {
			return nil, err
		}
		if err := validateProduct(p, nil).Err(); err != nil {
			return nil, err
		}
		return p, nil
	}

	errs := &validation.Errors{}
	p := models.Product{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		errs.Add("price", "Price must be a number")
	}
	p.Price = price
	if p.Stock, err = strconv.Atoi(c.FormValue("stock", "0")); err != nil {
		errs.Add("stock", "Stock must be a whole number")
	}
	if p.CategoryID, err = strconv.Atoi(c.FormValue("categoryId")); err != nil {
		errs.Add("categoryId", "Category is required")
	}
	image, err := formUpload(c, "image")
	if err != nil {
		return nil, err
	}
	if err := validateProduct(p, errs).Err(); err != nil {
		return nil, err
	}
	if image != nil && !strings.HasPrefix(mimetype.Detect(image.Content).String(), "image/") {
		return nil, &validation.Errors{Fields: map[string]string{"image": "Image must be an image file"}}
	}

	form := apiclient.NewForm().
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price", p.Price.String()).
		Set("stock", strconv.Itoa(p.Stock)).
		Set("categoryId", strconv.Itoa(p.CategoryID))
	if image != nil {
		form.File("image", image)
	}
	return form, nil
}

func validateProduct(p models.Product, errs *validation.Errors) *validation.Errors {
	if errs == nil {
		errs = &validation.Errors{}
	}
	if err := validation.Struct(p); err != nil {
		if ve, ok := validation.As(err); ok {
			for field, msg := range ve.Fields {
				errs.Add(field, msg)
			}
		}
	}
	if !p.Price.IsPositive() {
		errs.Add("price", "Price must be greater than 0")
	}
	return errs
}
