package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCampground inserts a campground with plausible defaults and no
// reviews.
func (f *Fixtures) CreateCampground(ctx context.Context, title string) models.Campground {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	cg := models.Campground{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Image:       "https://images.example.com/" + primitive.NewObjectID().Hex() + ".jpg",
		Price:       19.99,
		Location:    "Test Valley, CA",
		Description: "A quiet test campground.",
		Reviews:     []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("campgrounds").InsertOne(ctx, cg); err != nil {
		f.t.Fatalf("CreateCampground failed: %v", err)
	}
	return cg
}

// CreateReview inserts a review for cg and appends its id to cg.Reviews,
// keeping the reference invariant intact. author may be nil.
func (f *Fixtures) CreateReview(ctx context.Context, cg *models.Campground, body string, rating int, author *models.User) models.Review {
	f.t.Helper()

	rv := models.Review{
		ID:           primitive.NewObjectID(),
		Body:         body,
		Rating:       rating,
		CampgroundID: cg.ID,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if author != nil {
		id := author.ID
		rv.AuthorID = &id
		rv.AuthorName = author.Username
	}
	if _, err := f.db.Collection("reviews").InsertOne(ctx, rv); err != nil {
		f.t.Fatalf("CreateReview failed: %v", err)
	}
	if _, err := f.db.Collection("campgrounds").UpdateByID(ctx, cg.ID,
		bson.M{"$push": bson.M{"reviews": rv.ID}}); err != nil {
		f.t.Fatalf("CreateReview push failed: %v", err)
	}
	cg.Reviews = append(cg.Reviews, rv.ID)
	return rv
}

// CreateOrphanReview inserts a review whose campground does not exist.
func (f *Fixtures) CreateOrphanReview(ctx context.Context) models.Review {
	f.t.Helper()

	rv := models.Review{
		ID:           primitive.NewObjectID(),
		Body:         "Orphaned",
		Rating:       3,
		CampgroundID: primitive.NewObjectID(),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("reviews").InsertOne(ctx, rv); err != nil {
		f.t.Fatalf("CreateOrphanReview failed: %v", err)
	}
	return rv
}

// TestPassword is the plain-text password of users made by CreateUser.
const TestPassword = "correct-horse-battery"

// CreateUser inserts a password user whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		AuthMethod:   models.AuthPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}
