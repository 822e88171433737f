package handlers_test

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory stand-in for the REST backend. Like the real
// one, it serializes stored evidence and receipts as byte-offset maps.
type fakeBackend struct {
	mu        sync.Mutex
	products  map[int]models.Product
	orders    map[int]*models.Order
	nextOrder int
	puts      []fakePut
	cartItems []models.CartItemRecord
	created   []models.Category
}

type fakePut struct {
	fields map[string]string
	files  map[string]fakeFile
}

type fakeFile struct {
	filename, contentType string
	content               []byte
}

var tokens = map[string]struct {
	token, name, role string
	roleID            int
}{
	"siti@toko.id": {"tok-admin", "Siti", "admin", 1},
	"budi@toko.id": {"tok-customer", "Budi", "customer", 2},
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[int]models.Product{
			1: {ID: 1, Name: "Kopi", Price: decimal.NewFromInt(10000), Stock: 10, CategoryID: 1},
			2: {ID: 2, Name: "Teh", Price: decimal.NewFromInt(5000), Stock: 10, CategoryID: 1},
		},
		orders:    map[int]*models.Order{},
		nextOrder: 1,
	}
}

func envelope(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "message": "OK", "data": data})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func offsets(b []byte) map[string]int {
	m := make(map[string]int, len(b))
	for i, v := range b {
		m[strconv.Itoa(i)] = int(v)
	}
	return m
}

func orderJSON(o *models.Order) fiber.Map {
	m := fiber.Map{
		"id":          o.ID,
		"userId":      o.UserID,
		"user":        fiber.Map{"id": o.UserID, "name": "Budi", "phone": "+62 812-34"},
		"items":       o.Items,
		"totalAmount": o.TotalAmount,
		"status":      o.Status,
		"address":     o.Address,
		"isReviewed":  o.IsReviewed,
		"rating":      o.Rating,
		"comment":     o.Comment,
		"createdAt":   o.CreatedAt,
	}
	if len(o.Evidence) > 0 {
		m["evidence"] = offsets(o.Evidence)
	}
	if len(o.Receipt) > 0 {
		m["receipt"] = offsets(o.Receipt)
	}
	return m
}

func readPart(fh *multipart.FileHeader) (fakeFile, error) {
	f, err := fh.Open()
	if err != nil {
		return fakeFile{}, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return fakeFile{}, err
	}
	return fakeFile{filename: fh.Filename, contentType: fh.Header.Get("Content-Type"), content: content}, nil
}

func (b *fakeBackend) app() *fiber.App {
	app := fiber.New()

	app.Post("/auth", func(c *fiber.Ctx) error {
		var creds models.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}
		u, ok := tokens[creds.Email]
		if !ok || creds.Password != "rahasia" {
			return failure(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return envelope(c, fiber.StatusOK, fiber.Map{"token": u.token, "name": u.name, "email": creds.Email,
			"role": fiber.Map{"id": u.roleID, "name": u.role}})
	})

	app.Get("/public/catalogs", func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return envelope(c, fiber.StatusOK, []fiber.Map{{"id": 1, "name": "Minuman", "products": []models.Product{b.products[1], b.products[2]}}})
	})

	authed := app.Group("", func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get("Authorization"), "Bearer tok-") {
			return failure(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	})

	authed.Get("/products", func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return envelope(c, fiber.StatusOK, []models.Product{b.products[1], b.products[2]})
	})
	authed.Get("/products/:id", func(c *fiber.Ctx) error {
		id, _ := c.ParamsInt("id")
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.products[id]
		if !ok {
			return failure(c, fiber.StatusNotFound, "Product not found")
		}
		return envelope(c, fiber.StatusOK, p)
	})
	authed.Get("/categories", func(c *fiber.Ctx) error {
		return envelope(c, fiber.StatusOK, []models.Category{{ID: 1, Name: "Minuman"}})
	})
	authed.Post("/categories", func(c *fiber.Ctx) error {
		var cat models.Category
		if err := c.BodyParser(&cat); err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		cat.ID = 10 + len(b.created)
		b.created = append(b.created, cat)
		return envelope(c, fiber.StatusCreated, cat)
	})
	authed.Get("/users", func(c *fiber.Ctx) error {
		return envelope(c, fiber.StatusOK, []models.User{{ID: 1, Name: "Siti"}, {ID: 3, Name: "Budi"}})
	})

	authed.Post("/carts", func(c *fiber.Ctx) error {
		return envelope(c, fiber.StatusCreated, models.CartRecord{ID: 5, UserID: 3})
	})
	authed.Post("/cartitems", func(c *fiber.Ctx) error {
		var item models.CartItemRecord
		if err := c.BodyParser(&item); err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}
		b.mu.Lock()
		b.cartItems = append(b.cartItems, item)
		b.mu.Unlock()
		return envelope(c, fiber.StatusCreated, item)
	})

	authed.Get("/orders", func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := make([]fiber.Map, 0, len(b.orders))
		for id := 1; id < b.nextOrder; id++ {
			if o, ok := b.orders[id]; ok {
				out = append(out, orderJSON(o))
			}
		}
		return envelope(c, fiber.StatusOK, out)
	})
	authed.Post("/orders", func(c *fiber.Ctx) error {
		var req models.NewOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		o := &models.Order{ID: b.nextOrder, UserID: 3, Items: req.Items, TotalAmount: req.TotalAmount,
			Status: req.Status, CreatedAt: time.Now()}
		b.orders[o.ID] = o
		b.nextOrder++
		return envelope(c, fiber.StatusCreated, orderJSON(o))
	})
	authed.Get("/orders/:id", func(c *fiber.Ctx) error {
		id, _ := c.ParamsInt("id")
		b.mu.Lock()
		defer b.mu.Unlock()
		o, ok := b.orders[id]
		if !ok {
			return failure(c, fiber.StatusNotFound, "Order not found")
		}
		return envelope(c, fiber.StatusOK, orderJSON(o))
	})
	authed.Put("/orders/:id", func(c *fiber.Ctx) error {
		id, _ := c.ParamsInt("id")
		put := fakePut{fields: map[string]string{}, files: map[string]fakeFile{}}
		for _, name := range []string{"address", "status"} {
			if v := c.FormValue(name); v != "" {
				put.fields[name] = v
			}
		}
		for _, name := range []string{"evidence", "receipt"} {
			if fh, err := c.FormFile(name); err == nil {
				f, err := readPart(fh)
				if err != nil {
					return failure(c, fiber.StatusBadRequest, err.Error())
				}
				put.files[name] = f
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		o, ok := b.orders[id]
		if !ok {
			return failure(c, fiber.StatusNotFound, "Order not found")
		}
		b.puts = append(b.puts, put)
		if v, ok := put.fields["address"]; ok {
			o.Address = v
		}
		if v, ok := put.fields["status"]; ok {
			o.Status = models.OrderStatus(v)
		}
		if f, ok := put.files["evidence"]; ok {
			o.Evidence = f.content
		}
		if f, ok := put.files["receipt"]; ok {
			o.Receipt = f.content
		}
		return envelope(c, fiber.StatusOK, orderJSON(o))
	})

	return app
}

func (b *fakeBackend) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.puts)
}

func (b *fakeBackend) lastPut() fakePut {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts[len(b.puts)-1]
}

func (b *fakeBackend) addOrder(o *models.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o.ID = b.nextOrder
	b.orders[o.ID] = o
	b.nextOrder++
}
