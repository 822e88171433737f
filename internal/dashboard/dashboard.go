// Package dashboard computes the admin reporting figures from backend lists.
package dashboard

import (
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultDays is the length of the time series when none is asked for.
const DefaultDays = 7

// Point is one calendar day of the time series.
type Point struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Report is everything the dashboard shows.
type Report struct {
	Products   int                        `json:"products"`
	Categories int                        `json:"categories"`
	Users      int                        `json:"users"`
	Orders     int                        `json:"orders"`
	ByStatus   map[models.OrderStatus]int `json:"byStatus"`
	Revenue    decimal.Decimal            `json:"revenue"`
	Series     []Point                    `json:"series"`
}

// earns reports whether an order in status counts towards revenue.
func earns(status models.OrderStatus) bool {
	return status.Rank() >= models.StatusPaid.Rank()
}

// Build aggregates the lists. The series covers the last days calendar days up
// to and including now's day; days without orders are zero.
func Build(products, categories, users int, orders []models.Order, days int, now time.Time) *Report {
	if days < 1 {
		days = DefaultDays
	}
	r := &Report{
		Products:   products,
		Categories: categories,
		Users:      users,
		Orders:     len(orders),
		ByStatus:   make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		Revenue:    decimal.Zero,
		Series:     make([]Point, days),
	}
	for _, st := range models.OrderStatuses {
		r.ByStatus[st] = 0
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(days - 1))
	index := make(map[string]int, days)
	for i := range r.Series {
		date := first.AddDate(0, 0, i).Format("2006-01-02")
		r.Series[i] = Point{Date: date, Revenue: decimal.Zero}
		index[date] = i
	}

	for _, o := range orders {
		r.ByStatus[o.Status]++
		if earns(o.Status) {
			r.Revenue = r.Revenue.Add(o.TotalAmount)
		}
		i, ok := index[o.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		r.Series[i].Orders++
		if earns(o.Status) {
			r.Series[i].Revenue = r.Series[i].Revenue.Add(o.TotalAmount)
		}
	}
	return r
}

// Lister is a backend resource that can be listed.
type Lister[T any] interface {
	List(token string) ([]T, error)
}

// Source fetches the lists the dashboard aggregates.
type Source struct {
	Products   Lister[models.Product]
	Categories Lister[models.Category]
	Users      Lister[models.User]
	Orders     Lister[models.Order]
}

// Load fetches every list with the admin's token and builds the report.
func (s *Source) Load(token string, days int, now time.Time) (*Report, error) {
	products, err := s.Products.List(token)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	categories, err := s.Categories.List(token)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	users, err := s.Users.List(token)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	orders, err := s.Orders.List(token)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return Build(len(products), len(categories), len(users), orders, days, now), nil
}
