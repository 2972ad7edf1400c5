package infra

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Comprobante is the printable view of a committed sale, independent of
// whether it sold products or a single equipo.
type Comprobante struct {
	Comercio  string
	Titulo    string // "Venta" | "Venta de equipo"
	Numero    string
	Fecha     time.Time
	Cliente   string
	Lineas    []LineaComprobante
	Subtotal  decimal.Decimal
	Descuento decimal.Decimal // percentage
	Interes   decimal.Decimal // percentage
	Canje     decimal.Decimal // trade-in credit, zero when none
	Total     decimal.Decimal
	Pagos     []PagoComprobante
}

type LineaComprobante struct {
	Descripcion string
	Cantidad    int
	Importe     decimal.Decimal
}

type PagoComprobante struct {
	Tipo  string
	Monto decimal.Decimal
}

// FileName is the name the receipt is stored under.
func (c *Comprobante) FileName() string {
	return fmt.Sprintf("comprobante_%s.pdf", c.Numero)
}

// RenderComprobante draws a narrow receipt (80mm wide, height grows with the
// number of lines) and returns the PDF bytes.
func RenderComprobante(c *Comprobante) ([]byte, error) {
	const width = 80.0
	height := 90.0 + 5*float64(len(c.Lineas)+len(c.Pagos))

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contentW := width - 8
	col1 := contentW * 0.55
	col2 := contentW * 0.13
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(c.Comercio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(c.Titulo), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Factura N° "+c.Numero), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, c.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if c.Cliente != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+c.Cliente), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	separador(pdf, width)

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Detalle", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range c.Lineas {
		desc := []rune(l.Descripcion)
		if len(desc) > 26 {
			desc = append(desc[:25], '.')
		}
		pdf.CellFormat(col1, 5, tr(string(desc)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+l.Importe.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	separador(pdf, width)

	fila := func(label, valor string) {
		pdf.CellFormat(col1+col2, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, valor, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	fila("Subtotal:", "$"+c.Subtotal.StringFixed(2))
	if c.Descuento.IsPositive() {
		fila("Descuento:", c.Descuento.StringFixed(2)+"%")
	}
	if c.Interes.IsPositive() {
		fila("Interés:", c.Interes.StringFixed(2)+"%")
	}
	if c.Canje.IsPositive() {
		fila("Equipo en parte de pago:", "-$"+c.Canje.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	fila("TOTAL:", "$"+c.Total.StringFixed(2))

	if len(c.Pagos) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 7)
		for _, p := range c.Pagos {
			fila("Pago ("+p.Tipo+"):", "$"+p.Monto.StringFixed(2))
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// GuardarComprobante renders c into storagePath (created if needed) and
// returns the path of the written file.
func GuardarComprobante(c *Comprobante, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	data, err := RenderComprobante(c)
	if err != nil {
		return "", err
	}
	path := filepath.Join(storagePath, c.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func separador(pdf *fpdf.Fpdf, width float64) {
	pdf.Line(4, pdf.GetY(), width-4, pdf.GetY())
	pdf.Ln(2)
}
