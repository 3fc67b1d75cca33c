package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// Tolerance below which a floating-point weight difference counts as zero.
const epsilon = 1e-9

// RepositoryPort abstracts ledger storage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
	SumEffects(ctx context.Context, shopID string) ([]Drift, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort abstracts movement counters.
type MetricsPort interface {
	RecordMovement(txType, reason string)
	RecordStockRejection()
}

// Service is the inventory reconciler: it validates a movement against the
// product's cached totals, appends the ledger entry, and writes the new
// totals back, all inside one storage transaction.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	metrics MetricsPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics}
}

// MovementInput describes a requested stock movement.
type MovementInput struct {
	ShopID    string
	ProductID string
	Type      TransactionType
	Quantity  float64
	Weight    float64
	Reason    Reason
	ActorID   string
}

// RecordTransaction applies one stock movement. For STOCK_OUT the check
// against on-hand totals and the decrement are serialised per product by the
// row lock taken in the transaction, so two racing overdrafts cannot both
// succeed.
func (s *Service) RecordTransaction(ctx context.Context, input MovementInput) (Transaction, ProductTotals, error) {
	if err := validateMovement(input); err != nil {
		return Transaction{}, ProductTotals{}, err
	}

	now := time.Now().UTC()
	txn := Transaction{
		ID:        uuid.NewString(),
		ShopID:    input.ShopID,
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Weight:    input.Weight,
		Reason:    input.Reason,
		Date:      now,
		Timestamp: now.UnixMilli(),
	}

	var totals ProductTotals
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetTotalsForUpdate(ctx, input.ShopID, input.ProductID)
		if err != nil {
			return err
		}
		switch input.Type {
		case StockIn:
			current.Quantity += input.Quantity
			current.Weight += input.Weight
		case StockOut:
			if input.Quantity > current.Quantity+epsilon || input.Weight > current.Weight+epsilon {
				return fmt.Errorf("%w: product %s has quantity=%.3f weight=%.3f",
					shared.ErrInsufficientStock, input.ProductID, current.Quantity, current.Weight)
			}
			current.Quantity -= input.Quantity
			current.Weight -= input.Weight
			if math.Abs(current.Quantity) < epsilon {
				current.Quantity = 0
			}
			if math.Abs(current.Weight) < epsilon {
				current.Weight = 0
			}
		}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		if err := tx.UpdateTotals(ctx, current); err != nil {
			return err
		}
		totals = current
		return nil
	})
	if err != nil {
		if s.metrics != nil && isInsufficient(err) {
			s.metrics.RecordStockRejection()
		}
		return Transaction{}, ProductTotals{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordMovement(string(input.Type), string(input.Reason))
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			ShopID:   input.ShopID,
			Action:   fmt.Sprintf("stock:%s", input.Type),
			Entity:   "stock_transaction",
			EntityID: txn.ID,
			Meta: map[string]any{
				"product_id": input.ProductID,
				"quantity":   input.Quantity,
				"weight":     input.Weight,
				"reason":     string(input.Reason),
			},
		})
	}
	return txn, totals, nil
}

// ListTransactions returns ledger entries for a shop, optionally narrowed to
// one product, newest first.
func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	if filter.ShopID == "" {
		return nil, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	return s.repo.List(ctx, filter)
}

// Audit replays the ledger for every product in the shop and returns the
// products whose cached totals drifted from the replayed sums.
func (s *Service) Audit(ctx context.Context, shopID string) ([]Drift, error) {
	sums, err := s.repo.SumEffects(ctx, shopID)
	if err != nil {
		return nil, err
	}
	var drifted []Drift
	for _, d := range sums {
		if math.Abs(d.CachedQuantity-d.LedgerQuantity) > 1e-6 || math.Abs(d.CachedWeight-d.LedgerWeight) > 1e-6 {
			drifted = append(drifted, d)
		}
	}
	return drifted, nil
}

func validateMovement(input MovementInput) error {
	if input.ShopID == "" || input.ProductID == "" {
		return fmt.Errorf("%w: shop and product required", shared.ErrValidation)
	}
	if !input.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", shared.ErrValidation, input.Type)
	}
	if !input.Reason.Valid() {
		return fmt.Errorf("%w: unknown reason %q", shared.ErrValidation, input.Reason)
	}
	if input.Quantity < 0 || input.Weight < 0 {
		return fmt.Errorf("%w: quantity and weight must be non-negative", shared.ErrValidation)
	}
	if input.Quantity < epsilon && input.Weight < epsilon {
		return fmt.Errorf("%w: quantity or weight must be positive", shared.ErrValidation)
	}
	return nil
}

func isInsufficient(err error) bool {
	return errors.Is(err, shared.ErrInsufficientStock)
}
