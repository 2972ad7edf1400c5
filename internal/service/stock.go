package service

import (
	"context"

	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de movimiento de stock.
const (
	StockVenta               = "venta"
	StockAnulacionVenta      = "anulacion_venta"
	StockDevolucion          = "devolucion"
	StockReemplazo           = "reemplazo"
	StockAnulacionDevolucion = "anulacion_devolucion"
	StockAjuste              = "ajuste"
)

// stockMover applies inventory deltas and records the matching MovimientoStock
// on the caller's tx.
type stockMover struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

// disponible locks the inventario row and fails when it holds less than cantidad.
func (m stockMover) disponible(ctx context.Context, tx *gorm.DB, producto *model.Producto, puntoVentaID uuid.UUID, cantidad int) error {
	inv, err := m.productos.FindInventario(ctx, tx, producto.ID, puntoVentaID, true)
	if err != nil {
		return err
	}
	if inv.Stock < cantidad {
		return ErrStockInsuficiente.Msgf("Stock insuficiente para %s (disponible %d, solicitado %d)", producto.Nombre, inv.Stock, cantidad)
	}
	return nil
}

func (m stockMover) mover(ctx context.Context, tx *gorm.DB, productoID, puntoVentaID uuid.UUID, delta int, tipo, motivo string, ref *uuid.UUID, usuarioID uuid.UUID) error {
	if delta == 0 {
		return nil
	}
	antes, despues, err := m.productos.AjustarStockTx(ctx, tx, productoID, puntoVentaID, delta)
	if err != nil {
		return err
	}
	uid := usuarioID
	return m.movimientos.CreateTx(ctx, tx, &model.MovimientoStock{
		ProductoID:    productoID,
		PuntoVentaID:  puntoVentaID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: antes,
		StockNuevo:    despues,
		Motivo:        motivo,
		ReferenciaID:  ref,
		UsuarioID:     &uid,
	})
}
