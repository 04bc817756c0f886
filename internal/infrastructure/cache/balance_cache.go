package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.BalanceCache = (*BalanceCache)(nil)

const keyPrefix = "inventory:balance"

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// BalanceCache caché de lectura de saldos en Redis. Las fallas de Redis se registran y se tratan
// como ausencia: la fuente de verdad sigue siendo la base.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewBalanceCache construye la caché. ttl <= 0 usa 30 segundos.
func NewBalanceCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *BalanceCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BalanceCache{client: client, ttl: ttl, log: log.Named("balance-cache")}
}

type cachedBalance struct {
	ProductID       string    `json:"product_id"`
	WarehouseID     string    `json:"warehouse_id"`
	Quantity        int64     `json:"quantity"`
	AverageUnitCost string    `json:"average_unit_cost"`
	Version         int64     `json:"version"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func key(productID, warehouseID string) string {
	return keyPrefix + ":" + productID + ":" + warehouseID
}

// guardedSet escribe el saldo (o una lápida con data vacía) solo si la versión guardada no es mayor.
// KEYS[1] llave; ARGV[1] versión; ARGV[2] saldo en JSON o ""; ARGV[3] TTL en milisegundos.
var guardedSet = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'v') or '0')
if cur > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Get devuelve el saldo guardado; una lápida o una llave ausente es ausencia.
func (c *BalanceCache) Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryBalance, bool) {
	raw, err := c.client.HGet(ctx, key(productID, warehouseID), "data").Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).Msg("lectura de caché fallida")
		}
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}
	var cb cachedBalance
	if err := json.Unmarshal(raw, &cb); err != nil {
		c.log.Warn().Err(err).Msg("valor de caché corrupto")
		return nil, false
	}
	b := entity.NewEmptyBalance(cb.ProductID, cb.WarehouseID)
	b.Quantity = cb.Quantity
	b.Version = cb.Version
	b.UpdatedAt = cb.UpdatedAt
	if err := b.AverageUnitCost.UnmarshalText([]byte(cb.AverageUnitCost)); err != nil {
		return nil, false
	}
	return b, true
}

// Set guarda el saldo leído de la base. Si ya hay una versión más nueva (o una invalidación posterior)
// el saldo se descarta: un lector lento no reemplaza lo que otra escritura ya confirmó.
func (c *BalanceCache) Set(ctx context.Context, b *entity.InventoryBalance) {
	raw, err := json.Marshal(cachedBalance{
		ProductID:       b.ProductID,
		WarehouseID:     b.WarehouseID,
		Quantity:        b.Quantity,
		AverageUnitCost: b.AverageUnitCost.String(),
		Version:         b.Version,
		UpdatedAt:       b.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.guarded(ctx, key(b.ProductID, b.WarehouseID), b.Version, string(raw)); err != nil {
		c.log.Warn().Err(err).Str("product_id", b.ProductID).Msg("escritura de caché fallida")
	}
}

// Invalidate se llama después del commit. Deja una lápida con la versión confirmada, que vive lo mismo
// que una entrada normal; un par sin versión se borra.
func (c *BalanceCache) Invalidate(ctx context.Context, pairs ...inventory.Pair) {
	var unversioned []string
	for _, p := range pairs {
		k := key(p.ProductID, p.WarehouseID)
		if p.Version <= 0 {
			unversioned = append(unversioned, k)
			continue
		}
		if err := c.guarded(ctx, k, p.Version, ""); err != nil {
			c.log.Warn().Err(err).Str("product_id", p.ProductID).Str("warehouse_id", p.WarehouseID).Msg("invalidación de caché fallida")
		}
	}
	if len(unversioned) == 0 {
		return
	}
	if err := c.client.Del(ctx, unversioned...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(unversioned)).Msg("invalidación de caché fallida")
	}
}

func (c *BalanceCache) guarded(ctx context.Context, k string, version int64, data string) error {
	return guardedSet.Run(ctx, c.client, []string{k}, version, data, c.ttl.Milliseconds()).Err()
}
