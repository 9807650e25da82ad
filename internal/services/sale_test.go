package services

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/google/uuid"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

func newSaleSvc(t *testing.T, f *fixture) SaleService {
	t.Helper()
	receipts, err := NewReceiptRenderer("", nil)
	if err != nil {
		t.Fatalf("NewReceiptRenderer: %v", err)
	}
	return NewSaleService(f.db, f.log, f.stores, f.products, f.sales, receipts, f.events)
}

func TestRecordSale(t *testing.T) {
	f := newFixture(t)
	svc := newSaleSvc(t, f)
	owner := f.user("ana", types.RoleOwner)
	emp := f.user("luis", types.RoleEmployee)
	store := f.store(owner, "Tienda", "luis")
	soda := f.product(store, "A", 10, 2)
	chips := f.product(store, "B", 3, 2)

	sale, err := svc.Record(as(emp), store.ID, SaleInput{
		PaymentMethod: "card",
		Items: []SaleLineInput{
			{ProductID: soda.ID, Quantity: 2},
			{ProductID: chips.ID, Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	// seeded products cost 15 each
	if sale.Total != 105 || sale.SoldBy != "luis" || len(sale.Items) != 2 || sale.Items[1].Code != "B" {
		t.Fatalf("sale = %+v", sale)
	}

	after, err := f.products.GetByIDs(dbcOf(f), []uuid.UUID{soda.ID, chips.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	stock := map[uuid.UUID]int{}
	for _, p := range after {
		stock[p.ID] = p.Stock
	}
	if stock[soda.ID] != 8 || stock[chips.ID] != 0 {
		t.Fatalf("stock after sale = %v", stock)
	}
	if f.events.count(realtime.SSEEventSaleRecorded) != 1 || f.events.count(realtime.SSEEventStockLow) != 1 {
		t.Fatalf("events = %+v", f.events.msgs)
	}

	listed, err := svc.List(as(owner), store.ID, 0)
	if err != nil || len(listed) != 1 || listed[0].ID != sale.ID {
		t.Fatalf("List: %v (%d)", err, len(listed))
	}
}

func TestRecordSaleValidation(t *testing.T) {
	f := newFixture(t)
	svc := newSaleSvc(t, f)
	owner := f.user("ana", types.RoleOwner)
	admin := f.user("root", types.RoleSuperAdmin)
	store := f.store(owner, "Tienda")
	other := f.store(f.user("bea", types.RoleOwner), "Otra")
	p := f.product(store, "A", 10, 2)
	foreign := f.product(other, "Z", 10, 2)

	_, err := svc.Record(as(owner), store.ID, SaleInput{PaymentMethod: "cash"})
	expectCode(t, err, http.StatusBadRequest, "empty_cart")
	_, err = svc.Record(as(owner), store.ID, SaleInput{PaymentMethod: "bitcoin", Items: []SaleLineInput{{ProductID: p.ID, Quantity: 1}}})
	expectCode(t, err, http.StatusBadRequest, "invalid_payment_method")
	_, err = svc.Record(as(owner), store.ID, SaleInput{PaymentMethod: "cash", Items: []SaleLineInput{{ProductID: p.ID, Quantity: 0}}})
	expectCode(t, err, http.StatusBadRequest, "invalid_quantity")
	_, err = svc.Record(as(owner), store.ID, SaleInput{PaymentMethod: "cash", Items: []SaleLineInput{{ProductID: foreign.ID, Quantity: 1}}})
	expectCode(t, err, http.StatusNotFound, "product_not_found")
	_, err = svc.Record(as(admin), store.ID, SaleInput{PaymentMethod: "cash", Items: []SaleLineInput{{ProductID: p.ID, Quantity: 1}}})
	expectCode(t, err, http.StatusForbidden, "store_forbidden")

	count, err := f.sales.Count(dbcOf(f))
	if err != nil || count != 0 {
		t.Fatalf("rejected sales were stored: %d (%v)", count, err)
	}
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	svc := newSaleSvc(t, f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda Ana")
	p := f.product(store, "A", 10, 2)

	sale, err := svc.Record(as(owner), store.ID, SaleInput{PaymentMethod: "cash", Items: []SaleLineInput{{ProductID: p.ID, Quantity: 3}}})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	png, err := svc.Receipt(as(owner), store.ID, sale.ID)
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("receipt is not a PNG")
	}
	_, err = svc.Receipt(as(owner), store.ID, uuid.New())
	expectCode(t, err, http.StatusNotFound, "sale_not_found")
}
