// Package analytics aggregates orders into the admin dashboard.
package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
)

const (
	DefaultDays    = 30
	MaxDays        = 365
	topProductsCap = 5
	dayLayout      = "2006-01-02"
)

type ProductSales struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

type DailyRevenue struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type Dashboard struct {
	From                time.Time      `json:"from"`
	To                  time.Time      `json:"to"`
	TotalOrders         int            `json:"total_orders"`
	PaidOrders          int            `json:"paid_orders"`
	Revenue             float64        `json:"revenue"`
	AverageOrderValue   float64        `json:"average_order_value"`
	UniqueCustomers     int            `json:"unique_customers"`
	StatusCounts        map[string]int `json:"status_counts"`
	PaymentStatusCounts map[string]int `json:"payment_status_counts"`
	TopProducts         []ProductSales `json:"top_products"`
	Daily               []DailyRevenue `json:"daily"`
}

// Summarize aggregates the orders placed during the trailing days calendar
// days ending at now. Revenue, top products and the daily series count paid
// orders only; days without sales appear with zero revenue.
func Summarize(list []models.Order, now time.Time, days int) Dashboard {
	days = clampDays(days)
	from := windowStart(now, days)

	d := Dashboard{
		From:                from,
		To:                  now,
		StatusCounts:        map[string]int{},
		PaymentStatusCounts: map[string]int{},
		TopProducts:         []ProductSales{},
		Daily:               make([]DailyRevenue, 0, days),
	}

	dayIndex := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		dayIndex[day] = i
		d.Daily = append(d.Daily, DailyRevenue{Date: day})
	}
	dailyRevenue := make([]decimal.Decimal, days)

	revenue := decimal.Zero
	customers := map[string]struct{}{}
	type productTotals struct {
		sales   ProductSales
		revenue decimal.Decimal
	}
	products := map[string]*productTotals{}

	for _, o := range list {
		if o.CreatedAt.Before(from) || o.CreatedAt.After(now) {
			continue
		}
		d.TotalOrders++
		d.StatusCounts[string(o.Status)]++
		d.PaymentStatusCounts[string(o.PaymentStatus)]++
		if email := strings.ToLower(strings.TrimSpace(o.Email)); email != "" {
			customers[email] = struct{}{}
		}

		if o.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		d.PaidOrders++
		amount := decimal.NewFromFloat(o.TotalAmount)
		revenue = revenue.Add(amount)

		paidOn := o.CreatedAt
		if o.PaidAt != nil {
			paidOn = *o.PaidAt
		}
		if i, ok := dayIndex[paidOn.In(now.Location()).Format(dayLayout)]; ok {
			d.Daily[i].Orders++
			dailyRevenue[i] = dailyRevenue[i].Add(amount)
		}

		for _, item := range o.Items {
			p, ok := products[item.ProductID]
			if !ok {
				p = &productTotals{sales: ProductSales{ProductID: item.ProductID, Name: item.Name}}
				products[item.ProductID] = p
			}
			p.sales.Units += item.Quantity
			p.revenue = p.revenue.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	d.Revenue = toFloat(revenue)
	d.UniqueCustomers = len(customers)
	if d.PaidOrders > 0 {
		d.AverageOrderValue = toFloat(revenue.Div(decimal.NewFromInt(int64(d.PaidOrders))))
	}
	for i := range d.Daily {
		d.Daily[i].Revenue = toFloat(dailyRevenue[i])
	}

	for _, p := range products {
		p.sales.Revenue = toFloat(p.revenue)
		d.TopProducts = append(d.TopProducts, p.sales)
	}
	sort.Slice(d.TopProducts, func(i, j int) bool {
		a, b := d.TopProducts[i], d.TopProducts[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.ProductID < b.ProductID
	})
	if len(d.TopProducts) > topProductsCap {
		d.TopProducts = d.TopProducts[:topProductsCap]
	}
	return d
}

func clampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

func windowStart(now time.Time, days int) time.Time {
	y, m, day := now.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// OrderLister loads orders for the dashboard.
type OrderLister interface {
	ListOrders(ctx context.Context, f orders.Filter) ([]models.Order, error)
}

type Service struct {
	orders OrderLister
	now    func() time.Time
}

func NewService(lister OrderLister) *Service {
	return &Service{orders: lister, now: time.Now}
}

// Dashboard loads the orders of the trailing window and summarizes them.
func (s *Service) Dashboard(ctx context.Context, days int) (Dashboard, error) {
	now := s.now()
	days = clampDays(days)
	list, err := s.orders.ListOrders(ctx, orders.Filter{Since: windowStart(now, days)})
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(list, now, days), nil
}
