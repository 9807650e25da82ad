package reports

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	types "github.com/betoojeda/tienda-facil/internal/domain"
)

func saleAt(day, hour int, total float64) *types.Sale {
	return &types.Sale{Date: time.Date(2026, 5, day, hour, 0, 0, 0, time.UTC), Total: total}
}

func TestSummarize(t *testing.T) {
	sales := []*types.Sale{saleAt(1, 10, 100), saleAt(1, 15, 50), saleAt(2, 9, 30)}
	products := []*types.Product{
		{Category: "Bebidas", Stock: 5, MinStock: 10},
		{Category: "", Stock: 40, MinStock: 1},
		{Category: "Bebidas", Stock: 20, MinStock: 2},
	}
	got := Summarize(sales, products, time.UTC)

	if got.TotalRevenue != 180 || got.TotalOrders != 3 || got.AverageTicket != 60 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.LastSaleAt == nil || !got.LastSaleAt.Equal(sales[2].Date) {
		t.Fatalf("unexpected last sale: %v", got.LastSaleAt)
	}
	wantDays := []DayTotal{{Date: "01/05", Total: 150}, {Date: "02/05", Total: 30}}
	if diff := cmp.Diff(wantDays, got.SalesByDay); diff != "" {
		t.Fatalf("sales by day (-want +got):\n%s", diff)
	}
	wantStock := []CategoryStock{{Name: "Sin Categoría", Stock: 40}, {Name: "Bebidas", Stock: 25}}
	if diff := cmp.Diff(wantStock, got.StockByCategory); diff != "" {
		t.Fatalf("stock by category (-want +got):\n%s", diff)
	}
	if got.LowStockCount != 1 {
		t.Fatalf("expected 1 low stock product, got %d", got.LowStockCount)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, nil, nil)
	if got.AverageTicket != 0 || got.LastSaleAt != nil || len(got.SalesByDay) != 0 {
		t.Fatalf("unexpected empty summary: %+v", got)
	}
}

func TestSalesByDayKeepsLastSeven(t *testing.T) {
	var sales []*types.Sale
	for d := 1; d <= 10; d++ {
		sales = append(sales, saleAt(d, 12, float64(d)))
	}
	got := SalesByDay(sales, time.UTC)
	if len(got) != ChartDays || got[0].Date != "04/05" || got[6].Date != "10/05" {
		t.Fatalf("unexpected buckets: %+v", got)
	}
}

func TestSalesByDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	got := SalesByDay([]*types.Sale{saleAt(2, 3, 10)}, loc)
	if got[0].Date != "01/05" {
		t.Fatalf("expected local date 01/05, got %s", got[0].Date)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(18.5); got != "$18.50" {
		t.Fatalf("FormatMoney(18.5) = %q", got)
	}
	if got := FormatMoney(-3); got != "-$3.00" {
		t.Fatalf("FormatMoney(-3) = %q", got)
	}
}
