package services

import (
	"net/http"
	"strings"
	"testing"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/domain/system"
	"github.com/betoojeda/tienda-facil/internal/importer"
	"github.com/betoojeda/tienda-facil/internal/realtime"
)

func newImportSvc(f *fixture) ImportService {
	return NewImportService(f.db, f.log, f.stores, f.products, f.config, f.events)
}

func TestImportUpsertsByCode(t *testing.T) {
	f := newFixture(t)
	svc := newImportSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")
	existing := f.product(store, "A1", 1, 1)

	csv := strings.Join([]string{
		"Código,Descripción,Costo,Precio,Stock,Categoría",
		"A1,Arroz 1kg,20,28.5,40,Abarrotes",
		"B2,Frijol,$18.00,25,12,",
		",Sin código,1,1,1,X",
		"C3,,1,1,1,X",
	}, "\n")
	res, err := svc.Import(as(owner), store.ID, "inventario.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Created != 1 || res.Updated != 1 {
		t.Fatalf("result = %+v", res)
	}
	want := []string{"Row 4: skipped, missing code", "Row 5: skipped, missing name"}
	if len(res.Errors) != 2 || res.Errors[0] != want[0] || res.Errors[1] != want[1] {
		t.Fatalf("errors = %q", res.Errors)
	}

	all, err := f.products.ListByStore(dbcOf(f), store.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("products = %d (%v)", len(all), err)
	}
	for _, p := range all {
		switch p.Code {
		case "A1":
			if p.ID != existing.ID || p.Name != "Arroz 1kg" || p.Stock != 40 || p.Price != 28.5 {
				t.Fatalf("A1 not updated in place: %+v", p)
			}
		case "B2":
			if p.CostPrice != 18 || p.Category != types.DefaultCategory {
				t.Fatalf("B2 = %+v", p)
			}
		}
	}
	if f.events.count(realtime.SSEEventImportCompleted) != 1 {
		t.Fatalf("expected ImportCompleted")
	}
}

func TestImportRespectsProductLimit(t *testing.T) {
	f := newFixture(t)
	svc := newImportSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")
	f.setConfig(2, system.DefaultPlans())
	f.product(store, "A", 1, 1)

	csv := "codigo,nombre,precio\nA,Uno,1\nB,Dos,2\nC,Tres,3\n"
	res, err := svc.Import(as(owner), store.ID, "x.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Updated != 1 || res.Created != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "Row 4: skipped, product limit reached (2)") {
		t.Fatalf("error = %q", res.Errors[0])
	}
}

func TestImportFileProblems(t *testing.T) {
	f := newFixture(t)
	svc := newImportSvc(f)
	owner := f.user("ana", types.RoleOwner)
	emp := f.user("luis", types.RoleEmployee)
	store := f.store(owner, "Tienda", "luis")

	res, err := svc.Import(as(owner), store.ID, "vacio.csv", strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if res.Imported != 0 || len(res.Errors) != 1 || res.Errors[0] != importer.ErrEmpty.Error() {
		t.Fatalf("empty result = %+v", res)
	}

	_, err = svc.Import(as(owner), store.ID, "foto.png", strings.NewReader("x"))
	expectCode(t, err, http.StatusBadRequest, "unsupported_file")

	_, err = svc.Import(as(emp), store.ID, "x.csv", strings.NewReader("codigo,nombre\nA,B\n"))
	expectCode(t, err, http.StatusForbidden, "owner_required")
}

func TestImportIntoStoreSkipsCallerCheck(t *testing.T) {
	f := newFixture(t)
	svc := newImportSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")

	name, tmpl := svc.Template()
	if name != importer.TemplateFilename {
		t.Fatalf("template name = %q", name)
	}
	res, err := svc.ImportIntoStore(f.ctx, store.ID, name, strings.NewReader(string(tmpl)))
	if err != nil {
		t.Fatalf("ImportIntoStore: %v", err)
	}
	if res.Created != 4 || len(res.Errors) != 0 {
		t.Fatalf("template import = %+v", res)
	}
}

func TestImportUpdatesProductSavedThroughAPI(t *testing.T) {
	f := newFixture(t)
	products, _ := newProductSvc(t, f)
	svc := newImportSvc(f)
	owner := f.user("ana", types.RoleOwner)
	store := f.store(owner, "Tienda")

	saved, err := products.Save(as(owner), store.ID, ProductInput{Code: " EJ-001 ", Name: "Coca Cola 600ml", Category: "Bebidas", Price: 18})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Code != "EJ-001" || saved.Name != "Coca Cola 600ml" || saved.Category != "Bebidas" {
		t.Fatalf("case not kept: %+v", saved)
	}

	res, err := svc.Import(as(owner), store.ID, "x.csv", strings.NewReader("Codigo,Nombre,Precio\nEJ-001,Coca Cola 600ml,20\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("result = %+v", res)
	}
	all, err := f.products.ListByStore(dbcOf(f), store.ID)
	if err != nil || len(all) != 1 || all[0].ID != saved.ID || all[0].Price != 20 {
		t.Fatalf("products after import = %+v (%v)", all, err)
	}
}
