package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"18":        18,
		"$1,250.50": 1250.5,
		" 12.5 MXN": 12.5,
		"-3":        -3,
		"N/A":       0,
		"":          0,
		"-":         0,
		"1.2.3":     1.2,
		".5":        0.5,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseNumber(in), "ParseNumber(%q)", in)
	}
	require.Equal(t, 4, ParseCount("4.9"))
	require.Equal(t, -2, ParseCount("-1.5"))
}

func TestMatchHeadersAliasOrder(t *testing.T) {
	cols := MatchHeaders([]string{"SKU", "Código", "Producto", "Precio Venta", "Existencia", "Depto"})
	require.Equal(t, 1, cols[FieldCode], "codigo outranks sku")
	require.Equal(t, 2, cols[FieldName])
	require.Equal(t, 3, cols[FieldPrice])
	require.Equal(t, 4, cols[FieldStock])
	require.Equal(t, 5, cols[FieldCategory])
	_, ok := cols[FieldCostPrice]
	require.False(t, ok)
}

func TestParseCSVWithHeader(t *testing.T) {
	in := strings.Join([]string{
		"Descripción,Código,Precio,Cantidad,Categoría",
		"Arroz 1kg,AR-1,$32.50,12.9,",
		",AR-2,10,1,Granos",
		"Frijol,,20,1,Granos",
		"",
		"Azucar,AZ-1,25,3,Abarrotes",
	}, "\n")

	parsed, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	want := []Row{
		{Line: 2, Code: "AR-1", Name: "Arroz 1kg", Price: 32.5, Stock: 12, Category: "General"},
		{Line: 6, Code: "AZ-1", Name: "Azucar", Price: 25, Stock: 3, Category: "Abarrotes"},
	}
	if diff := cmp.Diff(want, parsed.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{
		"Row 3: skipped, missing name",
		"Row 4: skipped, missing code",
	}, parsed.Errors)
}

func TestParseCSVPositional(t *testing.T) {
	in := "P-1,Jabon,8,12,11,7,2,Limpieza\nP-2,Cloro\n"
	parsed, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	require.Equal(t, Row{Line: 1, Code: "P-1", Name: "Jabon", CostPrice: 8, Price: 12, WholesalePrice: 11, Stock: 7, MinStock: 2, Category: "Limpieza"}, parsed.Rows[0])
	require.Equal(t, "General", parsed.Rows[1].Category)
	require.Equal(t, 2, parsed.Rows[1].Line)
}

func TestParseCSVSemicolon(t *testing.T) {
	in := "\xef\xbb\xbfcodigo;nombre;precio\nA1;Pan;\"3.50\"\n"
	parsed, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	require.Equal(t, "A1", parsed.Rows[0].Code)
	require.Equal(t, 3.5, parsed.Rows[0].Price)
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("\n\n"))
	require.True(t, errors.Is(err, ErrEmpty))

	_, err = ParseCSV(strings.NewReader("codigo,nombre\n"))
	require.True(t, errors.Is(err, ErrEmpty))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Codigo", "Nombre", "Costo", "Precio", "Stock", "Minimo"},
		{"EJ-001", "Coca Cola 600ml", 12.5, 18, 48, 10},
		{"EJ-002", "", 1, 2, 3, 4},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	parsed, err := Parse("inventario.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	got := parsed.Rows[0]
	require.Equal(t, "EJ-001", got.Code)
	require.Equal(t, 12.5, got.CostPrice)
	require.Equal(t, 18.0, got.Price)
	require.Equal(t, 48, got.Stock)
	require.Equal(t, 10, got.MinStock)
	require.Equal(t, "General", got.Category)
	require.Equal(t, []string{"Row 3: skipped, missing name"}, parsed.Errors)
}

func TestParseXLSXUnreadable(t *testing.T) {
	_, err := Parse("roto.xlsx", strings.NewReader("not a zip"))
	require.True(t, errors.Is(err, ErrUnreadable))
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("Inventario.XLSX")
	require.NoError(t, err)
	require.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("foto.png")
	require.True(t, errors.Is(err, ErrUnsupported))
}
