package ledger

import (
	"sort"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// Statement es la tarjeta de stock de un producto en un rango de fechas.
type Statement struct {
	ProductID      string
	OpeningBalance int64 // stock inicial acumulado del registro
	RemainingStock int64
	TotalIn        int64 // entradas en el rango
	TotalOut       int64 // salidas en el rango
	ReceivedToDate int64 // entradas históricas, sin filtro de fechas
	Entries        []entity.StockEntry
}

// BuildStatement filtra los asientos (sin el de apertura) entre from y to; to incluye
// todo el día. Los asientos quedan ordenados por fecha.
func BuildStatement(rec entity.StockRecord, from, to *time.Time) Statement {
	st := Statement{
		ProductID:      rec.ProductID,
		OpeningBalance: rec.OpeningStock,
		RemainingStock: rec.RemainingStock,
		Entries:        make([]entity.StockEntry, 0, len(rec.Entries)),
	}
	var end time.Time
	if to != nil {
		y, m, d := to.Date()
		end = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Millisecond), to.Location())
	}
	for _, e := range rec.Entries {
		if e.Type == entity.EntryTypeStockIn {
			st.ReceivedToDate += e.Quantity
		}
		if e.IsOpening() {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(end) {
			continue
		}
		switch e.Type {
		case entity.EntryTypeStockIn:
			st.TotalIn += e.Quantity
		case entity.EntryTypeStockOut:
			st.TotalOut += e.Quantity
		}
		st.Entries = append(st.Entries, e)
	}
	sort.SliceStable(st.Entries, func(i, j int) bool {
		return st.Entries[i].Date.Before(st.Entries[j].Date)
	})
	return st
}
