package service

import (
	"context"
	"fmt"
	"time"

	"cellfie/internal/model"
	"cellfie/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PagoInput is one settlement leg handed to the poster.
type PagoInput struct {
	Monto          decimal.Decimal
	TipoPago       string
	ReferenciaID   uuid.UUID
	TipoReferencia model.TipoReferencia
	ClienteID      *uuid.UUID
	UsuarioID      uuid.UUID
	PuntoVentaID   uuid.UUID
	Notas          string
	// MovimientoID is set when the flow already posted the cargo for this leg;
	// the poster then links it instead of posting a second one.
	MovimientoID *uuid.UUID
	EsReintegro  bool
}

// PagoPoster is the single place where Pago rows are written. Every sale-like
// flow goes through it with its own tx.
type PagoPoster interface {
	// Registrar inserts exactly one Pago and, for an on-account leg with a
	// customer and no pre-posted movement, one cargo movement.
	Registrar(ctx context.Context, tx *gorm.DB, in PagoInput) (*model.Pago, error)
	// Anular marks the Pago annulled and reverses the movement it is linked to.
	Anular(ctx context.Context, tx *gorm.DB, pago *model.Pago, usuarioID uuid.UUID, motivo string, tipoRef model.TipoReferencia) error
}

type pagoPoster struct {
	repo       repository.PagoRepository
	puntoVenta repository.PuntoVentaRepository
	clientes   repository.ClienteRepository
	cuentas    repository.CuentaCorrienteRepository
	ledger     LedgerService
	now        func() time.Time
}

func NewPagoPoster(
	repo repository.PagoRepository,
	puntoVenta repository.PuntoVentaRepository,
	clientes repository.ClienteRepository,
	cuentas repository.CuentaCorrienteRepository,
	ledger LedgerService,
) PagoPoster {
	return &pagoPoster{
		repo:       repo,
		puntoVenta: puntoVenta,
		clientes:   clientes,
		cuentas:    cuentas,
		ledger:     ledger,
		now:        time.Now,
	}
}

func (p *pagoPoster) Registrar(ctx context.Context, tx *gorm.DB, in PagoInput) (*model.Pago, error) {
	in.Monto = in.Monto.Round(2)
	if !in.Monto.IsPositive() {
		return nil, invalido("El monto del pago debe ser mayor a cero")
	}
	if in.TipoPago == "" {
		return nil, invalido("El tipo de pago es obligatorio")
	}
	if !in.TipoReferencia.Valid() {
		return nil, invalido("Tipo de referencia inválido: %s", in.TipoReferencia)
	}
	if _, err := p.puntoVenta.FindByID(ctx, tx, in.PuntoVentaID); err != nil {
		return nil, notFound(err, ErrPuntoVentaNoEncontrado)
	}
	if in.ClienteID != nil {
		if _, err := p.clientes.FindByID(ctx, tx, *in.ClienteID); err != nil {
			return nil, notFound(err, ErrClienteNoEncontrado)
		}
	}

	movimientoID := in.MovimientoID
	if movimientoID == nil && in.ClienteID != nil && model.EsCuentaCorriente(in.TipoPago) {
		cuenta, err := p.cuentas.FindActivaByCliente(ctx, tx, *in.ClienteID, true)
		if err != nil {
			return nil, notFound(err, ErrSinCuentaActiva)
		}
		ref := in.ReferenciaID
		mov, err := p.ledger.Post(ctx, tx, MovimientoInput{
			CuentaID:       cuenta.ID,
			Tipo:           model.MovimientoCargo,
			Monto:          in.Monto,
			ReferenciaID:   &ref,
			TipoReferencia: in.TipoReferencia,
			UsuarioID:      in.UsuarioID,
			Notas:          in.Notas,
		})
		if err != nil {
			return nil, err
		}
		movimientoID = &mov.ID
	}

	pago := &model.Pago{
		Monto:          in.Monto,
		TipoPago:       in.TipoPago,
		ReferenciaID:   in.ReferenciaID,
		TipoReferencia: in.TipoReferencia,
		ClienteID:      in.ClienteID,
		UsuarioID:      in.UsuarioID,
		PuntoVentaID:   in.PuntoVentaID,
		MovimientoID:   movimientoID,
		EsReintegro:    in.EsReintegro,
		Notas:          in.Notas,
	}
	if err := p.repo.Create(ctx, tx, pago); err != nil {
		return nil, err
	}
	return pago, nil
}

func (p *pagoPoster) Anular(ctx context.Context, tx *gorm.DB, pago *model.Pago, usuarioID uuid.UUID, motivo string, tipoRef model.TipoReferencia) error {
	if pago.Anulado {
		return ErrYaAnulado.Msgf("El pago ya fue anulado")
	}
	ok, err := p.repo.MarcarAnulado(ctx, tx, pago, usuarioID, motivo, p.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrYaAnulado.Msgf("El pago ya fue anulado")
	}
	if pago.MovimientoID == nil {
		return nil
	}

	original, err := p.cuentas.FindMovimientoByID(ctx, tx, *pago.MovimientoID)
	if err != nil {
		return notFound(err, ErrNoEncontrado.Msgf("Movimiento %s no encontrado", *pago.MovimientoID))
	}
	nota := fmt.Sprintf("Anulación de pago %s: %s", pago.ID, motivo)
	_, err = p.ledger.Revertir(ctx, tx, original, usuarioID, nota, tipoRef)
	return err
}
