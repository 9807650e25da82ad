package importer

import "github.com/betoojeda/tienda-facil/internal/normalization"

type Field int

const (
	FieldCode Field = iota
	FieldName
	FieldCostPrice
	FieldPrice
	FieldWholesalePrice
	FieldStock
	FieldMinStock
	FieldCategory
)

// positional is the column order of a headerless CSV and of the template.
var positional = []Field{
	FieldCode,
	FieldName,
	FieldCostPrice,
	FieldPrice,
	FieldWholesalePrice,
	FieldStock,
	FieldMinStock,
	FieldCategory,
}

// aliases are tried in order; the first one present among the headers wins.
var aliases = map[Field][]string{
	FieldCode:           {"codigo", "code", "id", "sku", "referencia", "ref", "código"},
	FieldName:           {"descripcion", "description", "nombre", "name", "producto", "articulo", "descripción", "ítem", "item"},
	FieldCostPrice:      {"costo", "cost", "precio costo", "costprice", "compra", "precio compra"},
	FieldPrice:          {"precio", "price", "venta", "precio venta", "pvp", "valor", "importe"},
	FieldWholesalePrice: {"mayoreo", "wholesale", "precio mayoreo", "mayorista"},
	FieldStock:          {"stock", "inventario", "cantidad", "qty", "existencia", "unidades"},
	FieldMinStock:       {"minimo", "min", "alert", "inv minimo", "alerta", "minima"},
	FieldCategory:       {"categoria", "category", "departamento", "depto", "familia", "grupo"},
}

func Aliases(f Field) []string {
	return append([]string(nil), aliases[f]...)
}

// Columns maps each recognized field to its column index.
type Columns map[Field]int

// MatchHeaders resolves every field against a header row. Headers and
// aliases are compared in folded form, so "Código" and "codigo" are equal.
func MatchHeaders(headers []string) Columns {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalization.HeaderKey(h)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	cols := Columns{}
	for _, f := range positional {
		for _, alias := range aliases[f] {
			if i, ok := index[normalization.HeaderKey(alias)]; ok {
				cols[f] = i
				break
			}
		}
	}
	return cols
}

func positionalColumns() Columns {
	cols := make(Columns, len(positional))
	for i, f := range positional {
		cols[f] = i
	}
	return cols
}

// cell returns the trimmed value of field f, or "" when absent.
func (c Columns) cell(record []string, f Field) string {
	i, ok := c[f]
	if !ok || i >= len(record) {
		return ""
	}
	return trimCell(record[i])
}
