package inventory

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RunAtomic ejecuta fn como unidad atómica y la repite completa (releer, recalcular, reescribir)
// cuando la transacción falla por versión obsoleta. Tras maxAttempts intentos devuelve ErrContention.
func RunAtomic(ctx context.Context, runner TxRunner, maxAttempts int, fn func(ctx context.Context, repos repository.Repositories) error) error {
	for attempt := 1; ; attempt++ {
		err := runner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("%w (%d intentos): %w", domain.ErrContention, attempt, err)
		}
		if attempt == 1 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rand.N(time.Duration(attempt) * time.Millisecond)):
		}
	}
}
