package dto

import (
	"errors"
	"net/http"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// Códigos de error del contrato HTTP.
const (
	CodeValidation        = "VALIDATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDuplicateInvoice  = "DUPLICATE_INVOICE"
	CodeDuplicateBarcode  = "DUPLICATE_BARCODE"
	CodeBarcodeCount      = "BARCODE_COUNT"
	CodeBarcodeNotInStock = "BARCODE_NOT_IN_STOCK"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeTimeout           = "TIMEOUT"
	CodeUpstream          = "UPSTREAM"
	CodeInternal          = "INTERNAL"
)

// errorCodes orden de clasificación: los sentinelas más específicos primero.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeValidation},
	{domain.ErrInsufficientStock, http.StatusUnprocessableEntity, CodeInsufficientStock},
	{domain.ErrDuplicateInvoice, http.StatusConflict, CodeDuplicateInvoice},
	{domain.ErrDuplicateBarcode, http.StatusConflict, CodeDuplicateBarcode},
	{domain.ErrBarcodeCount, http.StatusUnprocessableEntity, CodeBarcodeCount},
	{domain.ErrBarcodeNotInStock, http.StatusUnprocessableEntity, CodeBarcodeNotInStock},
	{domain.ErrConflict, http.StatusConflict, CodeConflict},
	{domain.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{domain.ErrTimeout, http.StatusGatewayTimeout, CodeTimeout},
	{domain.ErrTransport, http.StatusBadGateway, CodeUpstream},
}

// NewErrorResponse clasifica un error de dominio en status HTTP y cuerpo de error.
// Los errores no clasificados se reportan como 500 sin exponer el detalle.
func NewErrorResponse(err error) (int, ErrorResponse) {
	status, body := http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "error interno"}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			status, body = ec.status, ErrorResponse{Code: ec.code, Message: err.Error()}
			break
		}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Message = ve.Reason
		body.Field = ve.Field
		if ve.Row >= 0 {
			row := ve.Row
			body.Row = &row
		}
		return status, body
	}
	var re *domain.RowError
	if errors.As(err, &re) {
		if status != http.StatusInternalServerError {
			body.Message = re.Err.Error()
		}
		body.ItemID = re.ProductID
		if re.Row >= 0 {
			row := re.Row
			body.Row = &row
		}
	}
	return status, body
}

// Err reconstruye el error de dominio a partir de una respuesta de error (lado cliente).
func (r ErrorResponse) Err(status int) error {
	row := -1
	if r.Row != nil {
		row = *r.Row
	}
	if r.Code == CodeValidation || (r.Code == "" && status == http.StatusBadRequest) {
		field := r.Field
		if field == "" {
			field = "body"
		}
		return &domain.ValidationError{Row: row, Field: field, Reason: r.Message}
	}

	sentinel := sentinelFor(r.Code, status)
	err := sentinel
	if r.Message != "" && r.Message != sentinel.Error() {
		err = &remoteError{msg: r.Message, sentinel: sentinel}
	}
	if r.ItemID != "" || r.Row != nil {
		return &domain.RowError{Row: row, ProductID: r.ItemID, Err: err}
	}
	return err
}

func sentinelFor(code string, status int) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusConflict:
		return domain.ErrConflict
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return domain.ErrTimeout
	default:
		return domain.ErrTransport
	}
}

// remoteError conserva el mensaje del servidor sin perder el sentinela.
type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
