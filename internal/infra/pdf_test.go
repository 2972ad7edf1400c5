package infra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comprobanteDePrueba() *Comprobante {
	return &Comprobante{
		Comercio: "Cellfie",
		Titulo:   "Venta",
		Numero:   "F260301-0007",
		Fecha:    time.Date(2026, 3, 1, 18, 30, 0, 0, time.Local),
		Cliente:  "Consumidor final",
		Lineas: []LineaComprobante{
			{Descripcion: "Funda silicona iPhone 15", Cantidad: 2, Importe: decimal.NewFromInt(5000)},
			{Descripcion: "Cargador 20W", Cantidad: 1, Importe: decimal.NewFromInt(12000)},
		},
		Subtotal:  decimal.NewFromInt(17000),
		Descuento: decimal.NewFromInt(10),
		Total:     decimal.NewFromInt(15300),
		Pagos: []PagoComprobante{
			{Tipo: "Efectivo", Monto: decimal.NewFromInt(10000)},
			{Tipo: "Cuenta Corriente", Monto: decimal.NewFromInt(5300)},
		},
	}
}

func TestRenderComprobante(t *testing.T) {
	data, err := RenderComprobante(comprobanteDePrueba())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGuardarComprobante(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "comprobantes")
	c := comprobanteDePrueba()

	path, err := GuardarComprobante(c, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "comprobante_F260301-0007.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
