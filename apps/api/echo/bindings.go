package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mtembezi/maktaba/core"
)

var (
	orderingParam    = "ordering"
	createdFromParam = "created_from"
	createdToParam   = "created_to"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindCreatedRange parses the `created_from` and `created_to` query params as RFC3339.
// Malformed values are ignored.
func bindCreatedRange(ctx echo.Context) (from, to time.Time) {
	if val := ctx.QueryParam(createdFromParam); val != "" {
		from, _ = time.Parse(time.RFC3339, val)
	}
	if val := ctx.QueryParam(createdToParam); val != "" {
		to, _ = time.Parse(time.RFC3339, val)
	}
	return from, to
}
