package service

import (
	"context"
	"fmt"

	"cellfie/internal/dto"
	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// liquidacion settles the payment legs of a sale-like operation.
// On-account legs are charged here, with the credit limit checked and the
// account opened on demand; the poster then records the Pago linked to that
// cargo. Every other leg goes straight to the poster.
type liquidacion struct {
	ledger LedgerService
	poster PagoPoster
}

func (l liquidacion) registrar(ctx context.Context, tx *gorm.DB, legs []dto.PagoLegRequest, base PagoInput) ([]model.Pago, error) {
	pagos := make([]model.Pago, 0, len(legs))
	for _, leg := range legs {
		in := base
		in.Monto = leg.Monto
		in.TipoPago = leg.TipoPago

		if model.EsCuentaCorriente(leg.TipoPago) {
			mov, err := l.cargo(ctx, tx, in)
			if err != nil {
				return nil, err
			}
			in.MovimientoID = &mov.ID
		}

		pago, err := l.poster.Registrar(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		pagos = append(pagos, *pago)
	}
	return pagos, nil
}

// cargo posts an on-account charge for in, limit-checked.
func (l liquidacion) cargo(ctx context.Context, tx *gorm.DB, in PagoInput) (*model.MovimientoCuentaCorriente, error) {
	if in.ClienteID == nil {
		return nil, invalido("Los pagos en cuenta corriente requieren un cliente")
	}
	cuenta, err := l.ledger.AsegurarCuenta(ctx, tx, *in.ClienteID)
	if err != nil {
		return nil, err
	}
	ref := in.ReferenciaID
	return l.ledger.Post(ctx, tx, MovimientoInput{
		CuentaID:       cuenta.ID,
		Tipo:           model.MovimientoCargo,
		Monto:          in.Monto,
		ReferenciaID:   &ref,
		TipoReferencia: in.TipoReferencia,
		UsuarioID:      in.UsuarioID,
		Notas:          in.Notas,
		ValidarLimite:  true,
	})
}

// anularTodos annuls every live Pago tied to one entity.
func (l liquidacion) anularTodos(ctx context.Context, tx *gorm.DB, pagos []model.Pago, usuarioID uuid.UUID, motivo string, tipoRef model.TipoReferencia) (int, error) {
	n := 0
	for i := range pagos {
		if pagos[i].Anulado {
			continue
		}
		if err := l.poster.Anular(ctx, tx, &pagos[i], usuarioID, motivo, tipoRef); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// revertirDevolucion undoes how a return's diferencia was settled: the Pago
// when there was one, otherwise the bare ledger movement.
func (l liquidacion) revertirDevolucion(ctx context.Context, tx *gorm.DB, repos *repository.Repos, dev *model.Devolucion, usuarioID uuid.UUID, motivo string) error {
	if dev.PagoID != nil {
		pago, err := repos.Pagos.FindByID(ctx, tx, *dev.PagoID, true)
		if err != nil {
			return notFound(err, ErrNoEncontrado.Msgf("Pago de la devolución no encontrado"))
		}
		if pago.Anulado {
			// annulled on its own through /api/pagos; its movement was reversed then
			return nil
		}
		return l.poster.Anular(ctx, tx, pago, usuarioID, motivo, model.RefAnulacionDevolucion)
	}
	if dev.MovimientoID == nil {
		return nil
	}
	original, err := repos.Cuentas.FindMovimientoByID(ctx, tx, *dev.MovimientoID)
	if err != nil {
		return notFound(err, ErrNoEncontrado.Msgf("Movimiento de la devolución no encontrado"))
	}
	nota := fmt.Sprintf("Anulación devolución %s: %s", dev.ID, motivo)
	_, err = l.ledger.Revertir(ctx, tx, original, usuarioID, nota, model.RefAnulacionDevolucion)
	return err
}

func sumarLegs(legs []dto.PagoLegRequest) (total decimal.Decimal) {
	for _, l := range legs {
		total = total.Add(l.Monto)
	}
	return total
}

func tieneCuentaCorriente(legs []dto.PagoLegRequest) bool {
	for _, l := range legs {
		if model.EsCuentaCorriente(l.TipoPago) {
			return true
		}
	}
	return false
}
