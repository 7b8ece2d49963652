// internal/app/features/campgrounds/types.go
package campgrounds

import (
	"html/template"
	"strconv"

	"github.com/dalemusser/yelpcamp/internal/app/system/htmlsanitize"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
)

// CampgroundRow is one campground as the views show it.
type CampgroundRow struct {
	ID             string
	Title          string
	Image          string
	Price          float64
	PriceText      string
	Location       string
	Description    string        // plain text, for summaries
	RawDescription string        // stored text, for the edit form
	DescHTML       template.HTML // sanitized, for the detail page
	ReviewCount    int
}

// ReviewRow is one review on the show page.
type ReviewRow struct {
	ID         string
	Body       template.HTML
	Rating     int
	AuthorName string
	CanDelete  bool
}

// IndexPage is the view model for campground_index.
type IndexPage struct {
	viewdata.BaseVM
	Campgrounds []CampgroundRow
}

// ShowPage is the view model for campground_show.
type ShowPage struct {
	viewdata.BaseVM
	Campground CampgroundRow
	Reviews    []ReviewRow
	CanEdit    bool
	MaxRating  int
}

// FormPage backs both campground_new and campground_edit.
type FormPage struct {
	viewdata.BaseVM
	Action     string
	Method     string // PUT for edits; the form posts with _method
	Campground CampgroundRow
}

func toRow(c models.Campground) CampgroundRow {
	return CampgroundRow{
		ID:             c.ID.Hex(),
		Title:          c.Title,
		Image:          c.Image,
		Price:          c.Price,
		PriceText:      strconv.FormatFloat(c.Price, 'f', 2, 64),
		Location:       c.Location,
		Description:    htmlsanitize.StripTags(c.Description),
		RawDescription: c.Description,
		DescHTML:       htmlsanitize.SanitizeHTML(c.Description),
		ReviewCount:    len(c.Reviews),
	}
}
