package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/reports"
)

const (
	receiptWidth   = 384
	receiptMargin  = 20
	receiptLineGap = 26
	receiptNameMax = 24
)

// ReceiptRenderer draws ticket-style PNG receipts.
type ReceiptRenderer struct {
	regular font.Face
	bold    font.Face
	title   font.Face
	loc     *time.Location
}

// NewReceiptRenderer uses the Go fonts unless fontPath names a TTF file.
func NewReceiptRenderer(fontPath string, loc *time.Location) (*ReceiptRenderer, error) {
	regularTTF, boldTTF := goregular.TTF, gobold.TTF
	if strings.TrimSpace(fontPath) != "" {
		raw, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read receipt font: %w", err)
		}
		regularTTF, boldTTF = raw, raw
	}
	regular, err := receiptFace(regularTTF, 16)
	if err != nil {
		return nil, err
	}
	bold, err := receiptFace(boldTTF, 16)
	if err != nil {
		return nil, err
	}
	title, err := receiptFace(boldTTF, 22)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptRenderer{regular: regular, bold: bold, title: title, loc: loc}, nil
}

func receiptFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse receipt font: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

// Render returns the PNG bytes of a sale's receipt.
func (rr *ReceiptRenderer) Render(storeName string, sale *types.Sale) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("sale required")
	}
	// header (4) + rule + lines + rule + total + payment + footer
	rows := 4 + 1 + len(sale.Items) + 1 + 3
	height := receiptMargin*2 + rows*receiptLineGap + 12

	dc := gg.NewContext(receiptWidth, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	left := float64(receiptMargin)
	right := float64(receiptWidth - receiptMargin)
	center := float64(receiptWidth) / 2
	y := float64(receiptMargin) + receiptLineGap

	dc.SetFontFace(rr.title)
	dc.DrawStringAnchored(storeName, center, y, 0.5, 0)
	y += receiptLineGap + 4

	dc.SetFontFace(rr.regular)
	dc.DrawStringAnchored(sale.Date.In(rr.loc).Format("02/01/2006 15:04"), center, y, 0.5, 0)
	y += receiptLineGap
	dc.DrawString("Folio: "+strings.ToUpper(sale.ID.String()[:8]), left, y)
	y += receiptLineGap
	dc.DrawString("Atendió: "+sale.SoldBy, left, y)
	y += receiptLineGap

	y = rr.rule(dc, y)
	for _, it := range sale.Items {
		dc.DrawString(fmt.Sprintf("%d x %s", it.Quantity, truncate(it.Name, receiptNameMax)), left, y)
		dc.DrawStringAnchored(reports.FormatMoney(it.Subtotal()), right, y, 1, 0)
		y += receiptLineGap
	}
	y = rr.rule(dc, y)

	dc.SetFontFace(rr.bold)
	dc.DrawString("TOTAL", left, y)
	dc.DrawStringAnchored(reports.FormatMoney(sale.Total), right, y, 1, 0)
	y += receiptLineGap

	dc.SetFontFace(rr.regular)
	dc.DrawString("Pago: "+sale.PaymentMethod.Label(), left, y)
	y += receiptLineGap
	dc.DrawStringAnchored("¡Gracias por su compra!", center, y, 0.5, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func (rr *ReceiptRenderer) rule(dc *gg.Context, y float64) float64 {
	dc.SetLineWidth(1)
	dc.SetDash(4, 3)
	mid := y - receiptLineGap/2
	dc.DrawLine(receiptMargin, mid, receiptWidth-receiptMargin, mid)
	dc.Stroke()
	dc.SetDash()
	return y + receiptLineGap/2
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
