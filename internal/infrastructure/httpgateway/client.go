package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// Verificar en tiempo de compilación que Client implementa el gateway.
var _ ledger.StockMovementGateway = (*Client)(nil)

// Rutas del backend POS (prefijo /api/v1/pos).
const (
	pathCatalog      = "/catalog"
	pathCreateIn     = "/create_stockIn"
	pathCreateOut    = "/stock-out"
	pathUpdateIn     = "/update_stockIn/"
	pathUpdateOut    = "/update_stockOut/"
	pathDeleteIn     = "/delete_stockIn/"
	pathDeleteOut    = "/delete_stockOut/"
	pathGetIn        = "/get_stockIn"
	pathGetOut       = "/get_stockOut"
	pathBarcodes     = "/product_barcode/"
	pathStockRecords = "/get_stock_record"
)

// listPageSize tamaño de página al recorrer listados completos (máximo que acepta el backend).
const listPageSize = 100

// maxErrorBody límite de lectura del cuerpo de una respuesta de error.
const maxErrorBody = 64 << 10

// Client implementa StockMovementGateway contra un backend remoto HTTP/JSON.
// No reintenta: un envío fallido vuelve al borrador y el usuario decide.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// New construye el cliente. baseURL incluye el prefijo, p. ej. https://pos.example.com/api/v1/pos.
// Si httpClient es nil se usa uno con timeout de red de 30 s; el reconciliador impone además
// un context.WithTimeout por llamada.
func New(baseURL, token string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		log:        log,
	}
}

// FetchProductCatalog obtiene los productos activos con su stock.
func (c *Client) FetchProductCatalog(ctx context.Context) ([]entity.CatalogItem, error) {
	var resp dto.CatalogResponse
	if err := c.do(ctx, http.MethodGet, pathCatalog, nil, nil, &resp); err != nil {
		return nil, err
	}
	items := make([]entity.CatalogItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, it.ToCatalogItem())
	}
	return items, nil
}

// SubmitStockMovement crea una entrada o salida; completa m.ID y m.Number con la respuesta.
func (c *Client) SubmitStockMovement(ctx context.Context, m *entity.StockMovement) (string, error) {
	path, body := pathCreateIn, any(dto.NewStockInRequest(m))
	if m.Direction == entity.DirectionOut {
		path, body = pathCreateOut, dto.NewStockOutRequest(m)
	}
	var resp dto.CreateMovementResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("respuesta sin _id: %w", domain.ErrTransport)
	}
	m.ID = resp.ID
	if resp.Number != "" {
		m.Number = resp.Number
	}
	return resp.ID, nil
}

// UpdateStockMovement reemplaza un movimiento confirmado.
func (c *Client) UpdateStockMovement(ctx context.Context, id string, m *entity.StockMovement) error {
	path, body := pathUpdateIn, any(dto.NewStockInRequest(m))
	if m.Direction == entity.DirectionOut {
		path, body = pathUpdateOut, dto.NewStockOutRequest(m)
	}
	return c.do(ctx, http.MethodPut, path+url.PathEscape(id), nil, body, nil)
}

// DeleteStockMovement borra un movimiento; el backend revierte el stock.
func (c *Client) DeleteStockMovement(ctx context.Context, dir entity.Direction, id string) error {
	path := pathDeleteIn
	if dir == entity.DirectionOut {
		path = pathDeleteOut
	}
	return c.do(ctx, http.MethodDelete, path+url.PathEscape(id), nil, nil, nil)
}

// FetchStockMovementByID obtiene un movimiento con sus productos resueltos.
func (c *Client) FetchStockMovementByID(ctx context.Context, dir entity.Direction, id string) (*entity.ResolvedMovement, error) {
	path := pathGetIn
	if dir == entity.DirectionOut {
		path = pathGetOut
	}
	var resp dto.MovementResponse
	if err := c.do(ctx, http.MethodGet, path+"/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Direction == "" {
		resp.Direction = dir
	}
	return resp.ToResolved()
}

// SaveBarcodes guarda los seriales de un producto ligados a una entrada o salida.
func (c *Client) SaveBarcodes(ctx context.Context, productID string, serials []string, link entity.BarcodeLink) error {
	body := dto.SaveBarcodesRequest{Serials: serials, StockInID: link.StockInID, StockOutID: link.StockOutID}
	return c.do(ctx, http.MethodPost, pathBarcodes+url.PathEscape(productID), nil, body, nil)
}

// ListStockMovements lista movimientos; sin dirección consulta entradas y luego salidas.
func (c *Client) ListStockMovements(ctx context.Context, f ledger.ListFilter) ([]*entity.ResolvedMovement, error) {
	if f.Direction == "" {
		in, err := c.listDirection(ctx, entity.DirectionIn, f)
		if err != nil {
			return nil, err
		}
		out, err := c.listDirection(ctx, entity.DirectionOut, f)
		if err != nil {
			return nil, err
		}
		return append(in, out...), nil
	}
	return c.listDirection(ctx, f.Direction, f)
}

// listDirection con Limit > 0 pide esa página; si no, recorre páginas hasta agotar el listado.
func (c *Client) listDirection(ctx context.Context, dir entity.Direction, f ledger.ListFilter) ([]*entity.ResolvedMovement, error) {
	path := pathGetIn
	if dir == entity.DirectionOut {
		path = pathGetOut
	}
	paged := f.Limit > 0
	if !paged {
		f.Limit, f.Offset = listPageSize, 0
	}
	var out []*entity.ResolvedMovement
	for {
		var resp dto.MovementListResponse
		if err := c.do(ctx, http.MethodGet, path, listQuery(f), nil, &resp); err != nil {
			return nil, err
		}
		for _, it := range resp.Items {
			if it.Direction == "" {
				it.Direction = dir
			}
			m, err := it.ToResolved()
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		f.Offset += len(resp.Items)
		if paged || len(resp.Items) < f.Limit || f.Offset >= resp.Page.Total {
			return out, nil
		}
	}
}

func listQuery(f ledger.ListFilter) url.Values {
	q := url.Values{}
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	if f.From != nil {
		q.Set("from", f.From.Format(time.DateOnly))
	}
	if f.To != nil {
		q.Set("to", f.To.Format(time.DateOnly))
	}
	if f.Active != nil {
		if *f.Active {
			q.Set("status", ledger.StatusActive)
		} else {
			q.Set("status", ledger.StatusInactive)
		}
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// ListStockRecords obtiene las tarjetas de stock con sus asientos.
func (c *Client) ListStockRecords(ctx context.Context) ([]entity.StockRecord, error) {
	var resp dto.StockRecordListResponse
	if err := c.do(ctx, http.MethodGet, pathStockRecords, nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]entity.StockRecord, 0, len(resp.Items))
	for _, r := range resp.Items {
		out = append(out, r.ToStockRecord())
	}
	return out, nil
}

// do ejecuta la petición y decodifica la respuesta. Status fuera de 2xx se traduce a errores
// de dominio con dto.ErrorResponse; fallas de red a ErrTransport (ErrTimeout si venció el plazo).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("codificar petición: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("crear petición: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("gateway sin respuesta")
		return transportError(ctx, err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("gateway")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var er dto.ErrorResponse
		if jsonErr := json.Unmarshal(raw, &er); jsonErr != nil || (er.Code == "" && er.Message == "") {
			er = dto.ErrorResponse{Message: strings.TrimSpace(string(raw))}
		}
		return er.Err(resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(ctx, fmt.Errorf("decodificar respuesta: %w", err))
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
