package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/pdf"
)

// OpeningStockSetter corrige el stock inicial de un producto (backend autoritativo).
type OpeningStockSetter interface {
	SetOpeningStock(ctx context.Context, productID string, opening int64) (*entity.StockRecord, error)
}

// CategoryLister lista las categorías de movimientos.
type CategoryLister interface {
	ListCategories(ctx context.Context, dir entity.Direction) ([]entity.Category, error)
}

// ReportPDFGenerator exporta reportes en PDF.
type ReportPDFGenerator interface {
	GenerateReport(meta pdf.ReportMeta, rep *ledger.Report) ([]byte, error)
	GenerateStatement(meta pdf.ReportMeta, productName string, st *ledger.Statement) ([]byte, error)
}

// CatalogInvalidator invalida el catálogo cacheado tras cambios de stock fuera del gateway.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// LedgerHandler maneja entradas, salidas, seriales, tarjetas de stock y reportes (protegido).
type LedgerHandler struct {
	gw          ledger.StockMovementGateway
	reconciler  *ledger.Reconciler
	reporter    *ledger.Reporter
	opening     OpeningStockSetter
	categories  CategoryLister
	pdf         ReportPDFGenerator
	invalidator CatalogInvalidator
	now         func() time.Time
}

// NewLedgerHandler construye el handler. opening, categories e invalidator pueden ser nil.
func NewLedgerHandler(
	gw ledger.StockMovementGateway,
	reconciler *ledger.Reconciler,
	reporter *ledger.Reporter,
	opening OpeningStockSetter,
	categories CategoryLister,
	pdfGen ReportPDFGenerator,
	invalidator CatalogInvalidator,
) *LedgerHandler {
	return &LedgerHandler{
		gw:          gw,
		reconciler:  reconciler,
		reporter:    reporter,
		opening:     opening,
		categories:  categories,
		pdf:         pdfGen,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// respondError traduce un error de dominio a status + dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	status, body := dto.NewErrorResponse(err)
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// Catalog godoc
// @Summary      Catálogo de productos con stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CatalogResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/catalog [get]
func (h *LedgerHandler) Catalog(c *fiber.Ctx) error {
	items, err := h.reconciler.LoadCatalog(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CatalogResponse{Items: make([]dto.CatalogItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.FromCatalogItem(it))
	}
	return c.JSON(resp)
}

// Categories godoc
// @Summary      Categorías de entradas o salidas
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        direction  query     string  false  "in | out"
// @Success      200        {object}  dto.CategoryListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      501        {object}  dto.ErrorResponse
// @Router       /api/v1/pos/categories [get]
func (h *LedgerHandler) Categories(c *fiber.Ctx) error {
	if h.categories == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "categorías no disponibles con gateway remoto"})
	}
	list, err := h.categories.ListCategories(c.UserContext(), entity.Direction(c.Query("direction")))
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CategoryListResponse{Items: make([]dto.CategoryResponse, 0, len(list))}
	for _, cat := range list {
		resp.Items = append(resp.Items, dto.FromCategory(cat))
	}
	return c.JSON(resp)
}

// CreateStockIn godoc
// @Summary      Registrar entrada de stock
// @Description  itemId y stockAdded son arreglos paralelos; stcokIn_price es el costo total.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockInRequest  true  "entrada"
// @Success      201   {object}  dto.CreateMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/create_stockIn [post]
func (h *LedgerHandler) CreateStockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.create(c, m)
}

// CreateStockOut godoc
// @Summary      Registrar salida de stock
// @Description  itemId y quantity son arreglos paralelos; Total_sale es el total de la venta.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockOutRequest  true  "salida"
// @Success      201   {object}  dto.CreateMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock-out [post]
func (h *LedgerHandler) CreateStockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.create(c, m)
}

func (h *LedgerHandler) create(c *fiber.Ctx, m *entity.StockMovement) error {
	id, err := h.gw.SubmitStockMovement(c.UserContext(), m)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateMovementResponse{ID: id, Number: m.Number})
}

// UpdateStockIn godoc
// @Summary      Editar entrada de stock
// @Description  Aplica al stock solo la diferencia por producto.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la entrada"
// @Param        body  body      dto.StockInRequest  true  "entrada"
// @Success      200   {object}  dto.CreateMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/update_stockIn/{id} [put]
func (h *LedgerHandler) UpdateStockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.update(c, m)
}

// UpdateStockOut godoc
// @Summary      Editar salida de stock
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "ID de la salida"
// @Param        body  body      dto.StockOutRequest  true  "salida"
// @Success      200   {object}  dto.CreateMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/update_stockOut/{id} [put]
func (h *LedgerHandler) UpdateStockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.update(c, m)
}

func (h *LedgerHandler) update(c *fiber.Ctx, m *entity.StockMovement) error {
	id := c.Params("id")
	m.ID = id
	if err := h.gw.UpdateStockMovement(c.UserContext(), id, m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CreateMovementResponse{ID: id, Number: m.Number})
}

// DeleteStockIn godoc
// @Summary      Borrar entrada de stock
// @Description  Revierte el stock; falla si las unidades ya se vendieron.
// @Tags         pos
// @Security     Bearer
// @Param        id   path  string  true  "ID de la entrada"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/delete_stockIn/{id} [delete]
func (h *LedgerHandler) DeleteStockIn(c *fiber.Ctx) error {
	return h.delete(c, entity.DirectionIn)
}

// DeleteStockOut godoc
// @Summary      Borrar salida de stock
// @Description  Devuelve las unidades al stock y libera sus seriales.
// @Tags         pos
// @Security     Bearer
// @Param        id   path  string  true  "ID de la salida"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/delete_stockOut/{id} [delete]
func (h *LedgerHandler) DeleteStockOut(c *fiber.Ctx) error {
	return h.delete(c, entity.DirectionOut)
}

func (h *LedgerHandler) delete(c *fiber.Ctx, dir entity.Direction) error {
	if err := h.reconciler.Delete(c.UserContext(), dir, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStockIn godoc
// @Summary      Obtener entrada de stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la entrada"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/get_stockIn/{id} [get]
func (h *LedgerHandler) GetStockIn(c *fiber.Ctx) error {
	return h.get(c, entity.DirectionIn)
}

// GetStockOut godoc
// @Summary      Obtener salida de stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la salida"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/get_stockOut/{id} [get]
func (h *LedgerHandler) GetStockOut(c *fiber.Ctx) error {
	return h.get(c, entity.DirectionOut)
}

func (h *LedgerHandler) get(c *fiber.Ctx, dir entity.Direction) error {
	m, err := h.gw.FetchStockMovementByID(c.UserContext(), dir, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if m == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.FromResolvedMovement(m))
}

// ListStockIn godoc
// @Summary      Listar entradas de stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        category  query     string  false  "Categoría"
// @Param        from      query     string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query     string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        status    query     string  false  "active | inactive"
// @Param        item      query     string  false  "Nombre de producto"
// @Param        sku       query     string  false  "SKU"
// @Param        invoice   query     string  false  "Factura"
// @Param        limit     query     int     false  "Límite"
// @Param        offset    query     int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/get_stockIn [get]
func (h *LedgerHandler) ListStockIn(c *fiber.Ctx) error {
	return h.list(c, entity.DirectionIn)
}

// ListStockOut godoc
// @Summary      Listar salidas de stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        category  query     string  false  "Categoría"
// @Param        from      query     string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query     string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        status    query     string  false  "active | inactive"
// @Param        limit     query     int     false  "Límite"
// @Param        offset    query     int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/get_stockOut [get]
func (h *LedgerHandler) ListStockOut(c *fiber.Ctx) error {
	return h.list(c, entity.DirectionOut)
}

func (h *LedgerHandler) list(c *fiber.Ctx, dir entity.Direction) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.Direction = string(dir)
	lf, rf, err := q.Filters()
	if err != nil {
		return respondError(c, err)
	}
	ms, err := h.gw.ListStockMovements(c.UserContext(), lf)
	if err != nil {
		return respondError(c, err)
	}
	ms, page := dto.Paginate(ledger.FilterMovements(ms, rf), q.PageRequest)
	resp := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(ms)),
		Page:  page,
	}
	for _, m := range ms {
		resp.Items = append(resp.Items, dto.FromResolvedMovement(m))
	}
	return c.JSON(resp)
}

// SaveBarcodes godoc
// @Summary      Guardar seriales de un producto
// @Description  Liga los seriales a una entrada (stockInId) o a una salida (stockoutId).
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Param        productId  path  string                  true  "ID del producto"
// @Param        body       body  dto.SaveBarcodesRequest  true  "seriales"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/product_barcode/{productId} [post]
func (h *LedgerHandler) SaveBarcodes(c *fiber.Ctx) error {
	var in dto.SaveBarcodesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	link, err := in.Link()
	if err != nil {
		return respondError(c, err)
	}
	if err := h.gw.SaveBarcodes(c.UserContext(), c.Params("productId"), in.Serials, link); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListStockRecords godoc
// @Summary      Tarjetas de stock
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockRecordListResponse
// @Router       /api/v1/pos/get_stock_record [get]
func (h *LedgerHandler) ListStockRecords(c *fiber.Ctx) error {
	recs, err := h.gw.ListStockRecords(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.StockRecordListResponse{Items: make([]dto.StockRecordResponse, 0, len(recs))}
	for _, r := range recs {
		resp.Items = append(resp.Items, dto.FromStockRecord(r))
	}
	return c.JSON(resp)
}

// SetOpeningStock godoc
// @Summary      Corregir stock inicial
// @Description  El disponible se mueve en la misma diferencia; nunca queda negativo.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path      string                   true  "ID del producto"
// @Param        body       body      dto.OpeningStockRequest  true  "stock inicial"
// @Success      200        {object}  dto.StockRecordResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      422        {object}  dto.ErrorResponse
// @Failure      501        {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock_record/{productId}/opening [put]
func (h *LedgerHandler) SetOpeningStock(c *fiber.Ctx) error {
	if h.opening == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "stock inicial no disponible con gateway remoto"})
	}
	var in dto.OpeningStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(&in); err != nil {
		return respondError(c, err)
	}
	rec, err := h.opening.SetOpeningStock(c.UserContext(), c.Params("productId"), *in.OpeningStock)
	if err != nil {
		return respondError(c, err)
	}
	if h.invalidator != nil {
		h.invalidator.Invalidate(c.UserContext())
	}
	return c.JSON(dto.FromStockRecord(*rec))
}

// Statement godoc
// @Summary      Tarjeta de stock de un producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        productId  path      string  true   "ID del producto"
// @Param        from       query     string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query     string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200        {object}  dto.StatementResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock_record/{productId}/statement [get]
func (h *LedgerHandler) Statement(c *fiber.Ctx) error {
	st, _, _, err := h.statement(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromStatement(st))
}

// StatementPDF godoc
// @Summary      Tarjeta de stock en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path  string  true   "ID del producto"
// @Param        from       query string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock_record/{productId}/statement/pdf [get]
func (h *LedgerHandler) StatementPDF(c *fiber.Ctx) error {
	st, from, to, err := h.statement(c)
	if err != nil {
		return respondError(c, err)
	}
	name := st.ProductID
	if items, err := h.reconciler.LoadCatalog(c.UserContext()); err == nil {
		for _, it := range items {
			if it.Product.ID == st.ProductID {
				name = it.Product.Name
				break
			}
		}
	}
	doc, err := h.pdf.GenerateStatement(pdf.ReportMeta{
		Title: "Tarjeta de stock", From: from, To: to, GeneratedAt: h.now(),
	}, name, st)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, "tarjeta-"+st.ProductID+".pdf", doc)
}

func (h *LedgerHandler) statement(c *fiber.Ctx) (*ledger.Statement, *time.Time, *time.Time, error) {
	var q dto.StatementQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, nil, nil, domain.NewValidationError("query", "parámetros inválidos")
	}
	from, to, err := q.Range()
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := h.reporter.Statement(c.UserContext(), c.Params("productId"), from, to)
	if err != nil {
		return nil, nil, nil, err
	}
	return st, from, to, nil
}

// Report godoc
// @Summary      Reporte de movimientos agrupado por transacción
// @Description  Sin direction incluye entradas y salidas. Filtros de texto sin distinguir mayúsculas.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        direction  query     string  false  "in | out"
// @Param        category   query     string  false  "Categoría"
// @Param        from       query     string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query     string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        status     query     string  false  "active | inactive"
// @Param        item       query     string  false  "Nombre de producto"
// @Param        sku        query     string  false  "SKU"
// @Param        invoice    query     string  false  "Factura"
// @Param        notes      query     string  false  "Notas"
// @Success      200  {object}  dto.ReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock/grouped [get]
func (h *LedgerHandler) Report(c *fiber.Ctx) error {
	rep, _, err := h.report(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReport(rep))
}

// ReportPDF godoc
// @Summary      Reporte de movimientos en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        direction  query  string  false  "in | out"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/pos/stock/grouped/pdf [get]
func (h *LedgerHandler) ReportPDF(c *fiber.Ctx) error {
	rep, lf, err := h.report(c)
	if err != nil {
		return respondError(c, err)
	}
	title := "Movimientos de stock"
	switch lf.Direction {
	case entity.DirectionIn:
		title = "Entradas de stock"
	case entity.DirectionOut:
		title = "Salidas de stock"
	}
	doc, err := h.pdf.GenerateReport(pdf.ReportMeta{Title: title, From: lf.From, To: lf.To, GeneratedAt: h.now()}, rep)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, "movimientos.pdf", doc)
}

func (h *LedgerHandler) report(c *fiber.Ctx) (*ledger.Report, ledger.ListFilter, error) {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, ledger.ListFilter{}, domain.NewValidationError("query", "parámetros inválidos")
	}
	lf, rf, err := q.Filters()
	if err != nil {
		return nil, lf, err
	}
	rep, err := h.reporter.Build(c.UserContext(), lf, rf)
	return rep, lf, err
}

func sendPDF(c *fiber.Ctx, filename string, doc []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}

// PreviewStockIn godoc
// @Summary      Previsualizar entrada
// @Description  Valida, asigna el costo por línea y proyecta el stock sin persistir.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreviewStockInRequest  true  "entrada"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/preview_stockIn [post]
func (h *LedgerHandler) PreviewStockIn(c *fiber.Ctx) error {
	var in dto.PreviewStockInRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.preview(c, m, in.Barcodes)
}

// PreviewStockOut godoc
// @Summary      Previsualizar salida
// @Description  Recorta cantidades al stock disponible (con advertencia) y proyecta el stock.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreviewStockOutRequest  true  "salida"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/pos/preview_stockOut [post]
func (h *LedgerHandler) PreviewStockOut(c *fiber.Ctx) error {
	var in dto.PreviewStockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := in.ToMovement()
	if err != nil {
		return respondError(c, err)
	}
	return h.preview(c, m, in.Barcodes)
}

func (h *LedgerHandler) preview(c *fiber.Ctx, m *entity.StockMovement, serials map[string][]string) error {
	catalog, err := h.reconciler.LoadCatalog(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	d, err := ledger.DraftFromMovement(m, catalog, serials, h.now())
	if err != nil {
		return respondError(c, err)
	}
	plan, err := h.reconciler.Preview(c.UserContext(), d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPlan(plan, d.Warnings))
}
