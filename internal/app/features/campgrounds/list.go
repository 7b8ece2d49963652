// internal/app/features/campgrounds/list.go
package campgrounds

import (
	"context"
	"net/http"

	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
)

// ServeList renders every campground.
//
// Route: GET /campgrounds
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cgs, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list campgrounds failed", err, "Could not load campgrounds.", "/")
		return
	}

	rows := make([]CampgroundRow, 0, len(cgs))
	for _, c := range cgs {
		rows = append(rows, toRow(c))
	}

	h.Render(w, r, "campground_index", IndexPage{
		BaseVM:      viewdata.NewBaseVM(w, r, "All Campgrounds", "/"),
		Campgrounds: rows,
	})
}
