package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Paginate recorta items a la página pedida. Total es la cantidad antes del recorte.
func Paginate[T any](items []T, p PageRequest) ([]T, PageResponse) {
	p.DefaultPage()
	page := PageResponse{Limit: p.Limit, Offset: p.Offset, Total: len(items)}
	if p.Offset >= len(items) {
		return items[:0], page
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end], page
}

// ErrorResponse cuerpo de error HTTP. Row y Field señalan la fila/campo rechazado.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     *int   `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	ItemID  string `json:"itemId,omitempty"`
}
