package reviews_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	"github.com/dalemusser/yelpcamp/internal/app/features/reviews"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/methodoverride"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"github.com/dalemusser/yelpcamp/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures, *flash.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	fs := testutil.NewFlashStore()

	sm, err := auth.NewSessionManager(testutil.TestSessionKey, "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	sm.SetFlashStore(fs)

	h := reviews.NewHandler(db, uierrors.NewErrorLogger(logger), fs, logger)
	r := chi.NewRouter()
	r.Use(methodoverride.Middleware)
	r.Mount("/campgrounds/{id}/reviews", reviews.Routes(h, sm))
	return r, testutil.NewFixtures(t, db), fs
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func reloadCampground(t *testing.T, f *testutil.Fixtures, id primitive.ObjectID) models.Campground {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var cg models.Campground
	if err := f.DB().Collection("campgrounds").FindOne(ctx, bson.M{"_id": id}).Decode(&cg); err != nil {
		t.Fatalf("reload campground: %v", err)
	}
	return cg
}

func countReviews(t *testing.T, f *testutil.Fixtures) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := f.DB().Collection("reviews").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	return n
}

func TestCreate_AttachesReviewToCampground(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := f.CreateUser(ctx, "camper")
	cg := f.CreateCampground(ctx, "Reviewed")

	form := url.Values{"review[body]": {"Lovely stars."}, "review[rating]": {"5"}}
	req := testutil.WithUser(testutil.NewFormRequest(http.MethodPost, "/campgrounds/"+cg.ID.Hex()+"/reviews", form), user)
	rec := serve(router, req)

	testutil.AssertRedirect(t, rec, "/campgrounds/"+cg.ID.Hex())
	testutil.AssertFlash(t, fs, rec, flash.Success, reviews.MsgCreated)

	got := reloadCampground(t, f, cg.ID)
	if len(got.Reviews) != 1 {
		t.Fatalf("campground reviews = %v, want 1 id", got.Reviews)
	}
	var rv models.Review
	if err := f.DB().Collection("reviews").FindOne(ctx, bson.M{"_id": got.Reviews[0]}).Decode(&rv); err != nil {
		t.Fatalf("FindOne review: %v", err)
	}
	if rv.Body != "Lovely stars." || rv.Rating != 5 || rv.CampgroundID != cg.ID {
		t.Errorf("review = %+v", rv)
	}
	if !rv.IsAuthor(user.ID) || rv.AuthorName != "camper" {
		t.Errorf("author = %v %q, want %s camper", rv.AuthorID, rv.AuthorName, user.ID.Hex())
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	router, f, _ := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := f.CreateUser(ctx, "camper")
	cg := f.CreateCampground(ctx, "Reviewed")

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"missing body", url.Values{"review[rating]": {"3"}}, "Review is required."},
		{"rating zero", url.Values{"review[body]": {"ok"}, "review[rating]": {"0"}}, "Rating must be at least 1."},
		{"rating six", url.Values{"review[body]": {"ok"}, "review[rating]": {"6"}}, "Rating must be at most 5."},
		{"rating text", url.Values{"review[body]": {"ok"}, "review[rating]": {"great"}}, "Rating must be a whole number."},
		{"both missing", url.Values{}, "Review is required.,Rating is required."},
		{"body too long", url.Values{"review[body]": {strings.Repeat("x", 2001)}, "review[rating]": {"4"}}, "Review must be at most 2000 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewFormRequest(http.MethodPost, "/campgrounds/"+cg.ID.Hex()+"/reviews", tt.form), user)
			rec := serve(router, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantMsg)
			}
		})
	}
	if n := countReviews(t, f); n != 0 {
		t.Errorf("reviews stored = %d, want 0", n)
	}
}

func TestCreate_UnknownCampground(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := f.CreateUser(ctx, "camper")

	form := url.Values{"review[body]": {"Where am I"}, "review[rating]": {"2"}}
	req := testutil.WithUser(testutil.NewFormRequest(http.MethodPost, "/campgrounds/"+primitive.NewObjectID().Hex()+"/reviews", form), user)
	rec := serve(router, req)

	testutil.AssertRedirect(t, rec, "/campgrounds")
	testutil.AssertFlash(t, fs, rec, flash.Error, "Cannot find campground")
	if n := countReviews(t, f); n != 0 {
		t.Errorf("reviews stored = %d, want 0", n)
	}
}

func deleteRequest(cg models.Campground, reviewID string) *http.Request {
	return testutil.NewFormRequest(http.MethodPost,
		"/campgrounds/"+cg.ID.Hex()+"/reviews/"+reviewID,
		url.Values{"_method": {http.MethodDelete}})
}

func TestDelete_ByAuthor(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	author := f.CreateUser(ctx, "author")
	cg := f.CreateCampground(ctx, "Reviewed")
	rv := f.CreateReview(ctx, &cg, "Meh", 2, &author)
	keep := f.CreateReview(ctx, &cg, "Nice", 4, nil)

	rec := serve(router, testutil.WithUser(deleteRequest(cg, rv.ID.Hex()), author))

	testutil.AssertRedirect(t, rec, "/campgrounds/"+cg.ID.Hex())
	testutil.AssertFlash(t, fs, rec, flash.Success, reviews.MsgDeleted)

	got := reloadCampground(t, f, cg.ID)
	if len(got.Reviews) != 1 || got.Reviews[0] != keep.ID {
		t.Errorf("campground reviews = %v, want only %s", got.Reviews, keep.ID.Hex())
	}
	if n := countReviews(t, f); n != 1 {
		t.Errorf("reviews left = %d, want 1", n)
	}
}

func TestDelete_NonAuthorRejected(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	author := f.CreateUser(ctx, "author")
	intruder := f.CreateUser(ctx, "intruder")
	cg := f.CreateCampground(ctx, "Reviewed")
	rv := f.CreateReview(ctx, &cg, "Mine", 5, &author)

	rec := serve(router, testutil.WithUser(deleteRequest(cg, rv.ID.Hex()), intruder))

	testutil.AssertRedirect(t, rec, "/campgrounds/"+cg.ID.Hex())
	testutil.AssertFlash(t, fs, rec, flash.Error, reviews.MsgNoPermission)
	if got := reloadCampground(t, f, cg.ID); len(got.Reviews) != 1 {
		t.Errorf("campground reviews = %v, want untouched", got.Reviews)
	}
	if n := countReviews(t, f); n != 1 {
		t.Errorf("reviews = %d, want 1", n)
	}
}

func TestDelete_UnknownOrForeignReview(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	author := f.CreateUser(ctx, "author")
	cg := f.CreateCampground(ctx, "Here")
	other := f.CreateCampground(ctx, "There")
	foreign := f.CreateReview(ctx, &other, "Elsewhere", 3, &author)

	for name, id := range map[string]string{
		"unknown":   primitive.NewObjectID().Hex(),
		"malformed": "nope",
		"foreign":   foreign.ID.Hex(),
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(router, testutil.WithUser(deleteRequest(cg, id), author))
			testutil.AssertRedirect(t, rec, "/campgrounds/"+cg.ID.Hex())
			testutil.AssertFlash(t, fs, rec, flash.Error, reviews.MsgNotFound)
		})
	}
	if n := countReviews(t, f); n != 1 {
		t.Errorf("reviews = %d, want 1", n)
	}
}

func TestUnauthenticated_RedirectsToLogin(t *testing.T) {
	router, f, fs := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	cg := f.CreateCampground(ctx, "Guarded")

	form := url.Values{"review[body]": {"Sneaky"}, "review[rating]": {"1"}}
	rec := serve(router, testutil.NewFormRequest(http.MethodPost, "/campgrounds/"+cg.ID.Hex()+"/reviews", form))

	testutil.AssertRedirect(t, rec, "/login?return="+url.QueryEscape("/campgrounds/"+cg.ID.Hex()))
	testutil.AssertFlash(t, fs, rec, flash.Error, auth.SignInRequiredMessage)
	if n := countReviews(t, f); n != 0 {
		t.Errorf("reviews stored = %d, want 0", n)
	}
}
