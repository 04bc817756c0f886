package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo libro de stock sobre la tabla stock_ledger (solo inserción; un trigger rechaza UPDATE y DELETE).
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

const ledgerColumns = `id, seq, ts, product_id, COALESCE(source_warehouse_id, ''), COALESCE(target_warehouse_id, ''),
	quantity, unit_cost, movement_type, transaction_id, reference_id, actor, description`

// Append inserta el asiento. El timestamp lo asigna la base (clock_timestamp) para que el orden
// del libro siga al orden real de escritura; seq desempata.
func (r *StockLedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_ledger (id, ts, product_id, source_warehouse_id, target_warehouse_id,
			quantity, unit_cost, movement_type, transaction_id, reference_id, actor, description)
		VALUES ($1, clock_timestamp(), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq, ts`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.ProductID, nullIfEmpty(e.SourceWarehouseID), nullIfEmpty(e.TargetWarehouseID),
		e.Quantity, e.UnitCost, string(e.MovementType), e.TransactionID, e.ReferenceID, e.Actor, e.Description,
	).Scan(&e.Sequence, &e.Timestamp)
	if err != nil {
		return "", fmt.Errorf("insert stock ledger entry: %w", err)
	}
	return e.ID, nil
}

// EntriesFor asientos ordenados por (ts, seq).
func (r *StockLedgerRepo) EntriesFor(ctx context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	where := []string{"product_id = $1"}
	args := []any{f.ProductID}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("$%d IN (source_warehouse_id, target_warehouse_id)", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("ts <= $%d", len(args)))
	}
	query := "SELECT " + ledgerColumns + " FROM stock_ledger WHERE " + strings.Join(where, " AND ") + " ORDER BY ts, seq"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock ledger: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockLedgerEntry{}
	for rows.Next() {
		var e entity.StockLedgerEntry
		var mt string
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.ProductID, &e.SourceWarehouseID, &e.TargetWarehouseID,
			&e.Quantity, &e.UnitCost, &mt, &e.TransactionID, &e.ReferenceID, &e.Actor, &e.Description); err != nil {
			return nil, fmt.Errorf("scan stock ledger entry: %w", err)
		}
		e.MovementType = entity.MovementType(mt)
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *StockLedgerRepo) WarehousesWithHistory(ctx context.Context, productID string) ([]string, error) {
	query := `
		SELECT DISTINCT COALESCE(target_warehouse_id, source_warehouse_id) AS warehouse_id
		FROM stock_ledger WHERE product_id = $1
		ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list ledger warehouses: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan ledger warehouse: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
