package home

import (
	"net/http"

	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the landing page.
type Handler struct {
	Log    *zap.Logger
	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		Render: templates.Render,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(w, r, "Welcome", "/"),
	}

	h.Render(w, r, "home", data)
}
