package importer

import (
	"bytes"
	"encoding/csv"
)

const TemplateFilename = "plantilla_inventario.csv"

var templateHeader = []string{"Codigo", "Nombre", "Costo", "Precio", "Mayoreo", "Stock", "Minimo", "Categoria"}

var templateRows = [][]string{
	{"EJ-001", "Coca Cola 600ml", "12.50", "18.00", "16.50", "48", "10", "Bebidas"},
	{"EJ-002", "Sabritas Sal 45g", "11.00", "16.00", "14.50", "24", "5", "Botanas"},
	{"EJ-003", "Aceite 1L", "35.00", "45.00", "42.00", "20", "5", "Abarrotes"},
	{"EJ-004", "Galletas Marias", "10.00", "14.00", "12.00", "30", "8", "Galletas"},
}

// Template is the downloadable CSV that ParseCSV reads back unchanged.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(templateHeader)
	_ = w.WriteAll(templateRows)
	return buf.Bytes()
}
