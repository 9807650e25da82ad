package reports

import (
	"sort"
	"strings"
	"time"

	types "github.com/betoojeda/tienda-facil/internal/domain"
)

const (
	ChartDays          = 7
	UncategorizedLabel = "Sin Categoría"
	dayBucketLayout    = "02/01"
)

type DayTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type CategoryStock struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type Summary struct {
	TotalRevenue    float64         `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	AverageTicket   float64         `json:"average_ticket"`
	LastSaleAt      *time.Time      `json:"last_sale_at,omitempty"`
	SalesByDay      []DayTotal      `json:"sales_by_day"`
	StockByCategory []CategoryStock `json:"stock_by_category"`
	LowStockCount   int             `json:"low_stock_count"`
}

// Summarize builds the dashboard figures. Sales are expected oldest first;
// day buckets keep first-appearance order and only the last ChartDays remain.
func Summarize(sales []*types.Sale, products []*types.Product, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	s := Summary{
		TotalOrders:     len(sales),
		SalesByDay:      SalesByDay(sales, loc),
		StockByCategory: StockByCategory(products),
	}
	for _, sale := range sales {
		s.TotalRevenue += sale.Total
		if s.LastSaleAt == nil || sale.Date.After(*s.LastSaleAt) {
			d := sale.Date
			s.LastSaleAt = &d
		}
	}
	if s.TotalOrders > 0 {
		s.AverageTicket = s.TotalRevenue / float64(s.TotalOrders)
	}
	for _, p := range products {
		if p.LowStock() {
			s.LowStockCount++
		}
	}
	return s
}

func SalesByDay(sales []*types.Sale, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.UTC
	}
	out := []DayTotal{}
	index := map[string]int{}
	for _, sale := range sales {
		key := sale.Date.In(loc).Format(dayBucketLayout)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, DayTotal{Date: key})
		}
		out[i].Total += sale.Total
	}
	if len(out) > ChartDays {
		out = out[len(out)-ChartDays:]
	}
	return out
}

// StockByCategory sums stock per category, highest first.
func StockByCategory(products []*types.Product) []CategoryStock {
	out := []CategoryStock{}
	index := map[string]int{}
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			name = UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryStock{Name: name})
		}
		out[i].Stock += p.Stock
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock > out[j].Stock })
	return out
}
