package normalization

import "testing"

func TestHeaderKey(t *testing.T) {
	cases := map[string]string{
		"  Código ":       "codigo",
		"DESCRIPCIÓN":     "descripcion",
		"Precio   Compra": "precio compra",
		"\ufeffCodigo":    "codigo",
		"Ítem":            "item",
		"Categoría":       "categoria",
		"inv mínimo":      "inv minimo",
	}
	for in, want := range cases {
		if got := HeaderKey(in); got != want {
			t.Fatalf("HeaderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseInputStringPtrNil(t *testing.T) {
	if ParseInputStringPtr(nil) != nil {
		t.Fatalf("expected nil")
	}
	s := "  ABC "
	if got := ParseInputStringPtr(&s); *got != "abc" {
		t.Fatalf("got %q", *got)
	}
}

func TestTextKeepsCase(t *testing.T) {
	if got := Text("  Coca Cola 600ml "); got != "Coca Cola 600ml" {
		t.Fatalf("Text = %q", got)
	}
	if got := Text("\tEJ-001\n"); got != "EJ-001" {
		t.Fatalf("Text = %q", got)
	}
}
