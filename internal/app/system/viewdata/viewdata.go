package viewdata

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserID     string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
	CSRFField template.HTML

	// One-shot messages from the previous request
	Flashes []flash.Message
}

var flashes *flash.Store

// Init sets the flash store pages pop messages from.
// Call this once at startup from bootstrap.
func Init(fs *flash.Store) {
	flashes = fs
}

// NewBaseVM creates a fully populated BaseVM for a page. It pops pending
// flashes, so it must run before the response header is written.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		CSRFField:   csrf.TemplateField(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = u.ID
		vm.UserName = u.Name
		if vm.UserName == "" {
			vm.UserName = u.Username
		}
	}

	if flashes != nil && w != nil {
		vm.Flashes = flashes.Pop(w, r)
	}
	return vm
}

// Page pairs the shared view model with page-specific data. Handlers that
// build their data from pure functions wrap it with this.
type Page struct {
	BaseVM
	Data any
}
