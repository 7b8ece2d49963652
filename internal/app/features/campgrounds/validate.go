// internal/app/features/campgrounds/validate.go
package campgrounds

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	"github.com/dalemusser/yelpcamp/internal/app/system/inputval"
)

const (
	// maxBodyBytes caps every campground body, JSON or form.
	maxBodyBytes = 1 << 20
	// maxMultipartMemory bounds form parsing for multipart submissions.
	maxMultipartMemory = 1 << 20
)

// CampgroundInput is the body shape {campground:{...}} after decoding.
type CampgroundInput struct {
	Title       string   `json:"title" validate:"required,max=200" label:"Title"`
	Image       string   `json:"image" validate:"required,httpurl" label:"Image"`
	Price       *float64 `json:"price" validate:"required,gte=0" label:"Price"`
	Location    string   `json:"location" validate:"required,max=200" label:"Location"`
	Description string   `json:"description" validate:"required,max=5000" label:"Description"`
}

type campgroundBody struct {
	Campground *CampgroundInput `json:"campground"`
}

type inputKey struct{}

// InputFrom returns the input validateCampground stored on r.
func InputFrom(r *http.Request) (CampgroundInput, bool) {
	in, ok := r.Context().Value(inputKey{}).(CampgroundInput)
	return in, ok
}

// WithInput stores in on r the way validateCampground does.
func WithInput(r *http.Request, in CampgroundInput) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), inputKey{}, in))
}

// validateCampground decodes and checks the campground body before any
// write handler runs. Violations fail the request with a 400 whose message
// joins every failure with ","; the store is never reached.
func (h *Handler) validateCampground(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		in, err := decodeCampground(r)
		if err != nil {
			h.ErrLog.Write(w, r, err, listURL)
			return
		}
		next.ServeHTTP(w, WithInput(r, in))
	})
}

func decodeCampground(r *http.Request) (CampgroundInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		in       CampgroundInput
		badPrice bool
	)
	switch mediaType {
	case "application/json":
		var body campgroundBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return in, bodyError(err, "Invalid request body.")
		}
		if body.Campground == nil {
			return in, uierrors.ValidationError("Campground is required.")
		}
		in = *body.Campground
		in.Title = strings.TrimSpace(in.Title)
		in.Image = strings.TrimSpace(in.Image)
		in.Location = strings.TrimSpace(in.Location)
		in.Description = strings.TrimSpace(in.Description)

	default:
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxMultipartMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return in, bodyError(err, "Invalid form data.")
		}
		if !hasCampgroundKeys(r) {
			return in, uierrors.ValidationError("Campground is required.")
		}
		in = CampgroundInput{
			Title:       field(r, "title"),
			Image:       field(r, "image"),
			Location:    field(r, "location"),
			Description: field(r, "description"),
		}
		if raw := field(r, "price"); raw != "" {
			p, perr := strconv.ParseFloat(raw, 64)
			if perr != nil || math.IsNaN(p) || math.IsInf(p, 0) {
				badPrice = true
			} else {
				in.Price = &p
			}
		}
	}

	if in.Price != nil && (math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0)) {
		in.Price, badPrice = nil, true
	}

	res := inputval.Validate(in)
	if !res.HasErrors() {
		return in, nil
	}
	if badPrice {
		for i, fe := range res.Errors {
			if fe.Field == "Price" && fe.Rule == "required" {
				res.Errors[i].Message = "Price must be a number."
			}
		}
	}
	return in, uierrors.ValidationError(res.Join(","))
}

func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostForm.Get("campground[" + name + "]"))
}

func hasCampgroundKeys(r *http.Request) bool {
	for k := range r.PostForm {
		if strings.HasPrefix(k, "campground[") {
			return true
		}
	}
	return false
}

// bodyError maps a read or parse failure to a 413 when the body went over
// maxBodyBytes, otherwise to a 400 with msg.
func bodyError(err error, msg string) *uierrors.HTTPError {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		he := uierrors.TooLarge("Request body too large.")
		he.Err = err
		return he
	}
	return &uierrors.HTTPError{Status: http.StatusBadRequest, Message: msg, Err: err}
}
