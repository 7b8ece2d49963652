package validators_test

import (
	"testing"

	"github.com/dalemusser/yelpcamp/internal/app/system/validators"
	"github.com/dalemusser/yelpcamp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_IdempotentAndCreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"campgrounds", "reviews", "users", "oauth_states"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestCampgroundSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	valid := bson.M{
		"_id":         primitive.NewObjectID(),
		"title":       "Pine Flats",
		"title_ci":    "pine flats",
		"image":       "https://example.com/p.jpg",
		"price":       12.5,
		"location":    "Sierra",
		"description": "Shady sites by the creek.",
		"reviews":     bson.A{},
	}

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid", func(bson.M) {}, false},
		{"zero price", func(d bson.M) { d["price"] = 0 }, false},
		{"negative price", func(d bson.M) { d["price"] = -1.0 }, true},
		{"blank title", func(d bson.M) { d["title"] = "   " }, true},
		{"missing location", func(d bson.M) { delete(d, "location") }, true},
		{"non-http image", func(d bson.M) { d["image"] = "ftp://x" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := bson.M{}
			for k, v := range valid {
				doc[k] = v
			}
			doc["_id"] = primitive.NewObjectID()
			tt.mutate(doc)

			_, err := db.Collection("campgrounds").InsertOne(ctx, doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReviewSchema_RatingBounds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	for rating, wantErr := range map[int]bool{0: true, 1: false, 5: false, 6: true} {
		_, err := db.Collection("reviews").InsertOne(ctx, bson.M{
			"body":          "Nice",
			"rating":        rating,
			"campground_id": primitive.NewObjectID(),
		})
		if (err != nil) != wantErr {
			t.Errorf("rating %d: InsertOne error = %v, wantErr %v", rating, err, wantErr)
		}
	}
}
