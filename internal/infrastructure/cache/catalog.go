package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// CatalogKey clave del catálogo cacheado. GenerationKey cambia con cada invalidación:
// una carga solo se guarda si la generación no cambió mientras consultaba el origen.
const (
	CatalogKey    = "pos-ledger:catalog"
	GenerationKey = "pos-ledger:catalog:gen"
)

var errStaleCatalog = errors.New("catálogo invalidado durante la carga")

var _ ledger.StockMovementGateway = (*CatalogCache)(nil)

// CatalogCache decora un gateway cacheando FetchProductCatalog en Redis.
// Toda mutación exitosa invalida la entrada, pues cambia stock o seriales.
// Una falla de Redis nunca bloquea al gateway: se registra y se consulta el origen.
type CatalogCache struct {
	ledger.StockMovementGateway
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCatalogCache construye el decorador.
func NewCatalogCache(next ledger.StockMovementGateway, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CatalogCache {
	return &CatalogCache{StockMovementGateway: next, client: client, ttl: ttl, log: log}
}

// FetchProductCatalog sirve el catálogo desde Redis o lo carga y lo guarda.
func (c *CatalogCache) FetchProductCatalog(ctx context.Context) ([]entity.CatalogItem, error) {
	payload, err := c.client.Get(ctx, CatalogKey).Bytes()
	if err == nil {
		var cached dto.CatalogResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return toItems(cached), nil
		}
		c.log.Warn().Msg("catálogo cacheado ilegible; se recarga")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Msg("redis no disponible; catálogo desde origen")
		return c.StockMovementGateway.FetchProductCatalog(ctx)
	}

	gen, err := generation(ctx, c.client)
	if err != nil {
		c.log.Warn().Err(err).Msg("redis no disponible; catálogo desde origen")
		return c.StockMovementGateway.FetchProductCatalog(ctx)
	}
	items, err := c.StockMovementGateway.FetchProductCatalog(ctx)
	if err != nil {
		return nil, err
	}
	resp := dto.CatalogResponse{Items: make([]dto.CatalogItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.FromCatalogItem(it))
	}
	raw, err := json.Marshal(resp)
	if err == nil {
		err = c.store(ctx, gen, raw)
	}
	switch {
	case errors.Is(err, errStaleCatalog), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Msg("catálogo invalidado durante la carga; no se cachea")
	case err != nil:
		c.log.Warn().Err(err).Msg("no se pudo cachear el catálogo")
	}
	return items, nil
}

// store guarda el catálogo si la generación sigue siendo gen (WATCH/MULTI).
func (c *CatalogCache) store(ctx context.Context, gen int64, raw []byte) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleCatalog
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CatalogKey, raw, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func toItems(resp dto.CatalogResponse) []entity.CatalogItem {
	items := make([]entity.CatalogItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, it.ToCatalogItem())
	}
	return items
}

// Invalidate avanza la generación y borra el catálogo cacheado.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, CatalogKey)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("no se pudo invalidar el catálogo")
	}
}

func (c *CatalogCache) SubmitStockMovement(ctx context.Context, m *entity.StockMovement) (string, error) {
	id, err := c.StockMovementGateway.SubmitStockMovement(ctx, m)
	if err == nil {
		c.Invalidate(ctx)
	}
	return id, err
}

func (c *CatalogCache) UpdateStockMovement(ctx context.Context, id string, m *entity.StockMovement) error {
	err := c.StockMovementGateway.UpdateStockMovement(ctx, id, m)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *CatalogCache) DeleteStockMovement(ctx context.Context, dir entity.Direction, id string) error {
	err := c.StockMovementGateway.DeleteStockMovement(ctx, dir, id)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *CatalogCache) SaveBarcodes(ctx context.Context, productID string, serials []string, link entity.BarcodeLink) error {
	err := c.StockMovementGateway.SaveBarcodes(ctx, productID, serials, link)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}
