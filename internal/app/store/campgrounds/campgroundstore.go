package campgroundstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	reviewstore "github.com/dalemusser/yelpcamp/internal/app/store/reviews"
	"github.com/dalemusser/yelpcamp/internal/app/system/txn"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no campground matches the id.
var ErrNotFound = errors.New("campground not found")

// ReviewDeleter removes the reviews a deleted campground referenced.
type ReviewDeleter interface {
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type Store struct {
	c       *mongo.Collection
	db      *mongo.Database
	reviews *reviewstore.Store
	cascade ReviewDeleter
}

func New(db *mongo.Database) *Store {
	rs := reviewstore.New(db)
	return &Store{
		c:       db.Collection("campgrounds"),
		db:      db,
		reviews: rs,
		cascade: rs,
	}
}

// WithReviewDeleter returns a copy of s whose Delete cascades through rd.
func (s *Store) WithReviewDeleter(rd ReviewDeleter) *Store {
	cp := *s
	cp.cascade = rd
	return &cp
}

// Create assigns an id, folded title and timestamps, then inserts c. It does
// not validate; callers run input validation first.
func (s *Store) Create(ctx context.Context, c models.Campground) (models.Campground, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(c.Title)
	if c.Reviews == nil {
		c.Reviews = []primitive.ObjectID{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Campground{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Campground, error) {
	var c models.Campground
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campground{}, ErrNotFound
		}
		return models.Campground{}, err
	}
	return c, nil
}

// GetWithReviews loads the campground and resolves its review references in
// list order. References to reviews that no longer exist are skipped.
func (s *Store) GetWithReviews(ctx context.Context, id primitive.ObjectID) (models.Campground, []models.Review, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Campground{}, nil, err
	}

	found, err := s.reviews.GetByIDs(ctx, c.Reviews)
	if err != nil {
		return models.Campground{}, nil, fmt.Errorf("load reviews: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Review, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}

	ordered := make([]models.Review, 0, len(found))
	for _, rid := range c.Reviews {
		if r, ok := byID[rid]; ok {
			ordered = append(ordered, r)
		}
	}
	return c, ordered, nil
}

// List returns every campground sorted by title.
func (s *Store) List(ctx context.Context) ([]models.Campground, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Campground{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CampgroundUpdate names the fields to replace. Nil fields are left alone.
type CampgroundUpdate struct {
	Title       *string
	Image       *string
	Price       *float64
	Location    *string
	Description *string
}

// Update applies u and returns the updated document, or ErrNotFound.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u CampgroundUpdate) (models.Campground, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
		set["title_ci"] = text.Fold(*u.Title)
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Campground
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campground{}, ErrNotFound
		}
		return models.Campground{}, err
	}
	return c, nil
}

// Delete removes the campground and every review it references. It returns
// the deleted document, or (nil, nil) when nothing matched; in that case no
// reviews are touched, so repeating a delete is harmless.
//
// Both writes share a transaction where the deployment supports one. On a
// standalone server they run in sequence and a failure between them leaves
// orphan reviews for the sweeper.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Campground, error) {
	var deleted *models.Campground
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		deleted = nil

		var c models.Campground
		err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted = &c
		if !c.HasReviews() {
			return nil
		}

		n, err := s.cascade.DeleteByIDs(ctx, c.Reviews)
		if err != nil {
			return fmt.Errorf("delete reviews of campground %s: %w", id.Hex(), err)
		}
		if n != int64(len(c.Reviews)) {
			zap.L().Debug("cascade deleted fewer reviews than referenced",
				zap.String("campground_id", id.Hex()),
				zap.Int("referenced", len(c.Reviews)),
				zap.Int64("deleted", n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// AddReview appends reviewID to the campground's review list.
func (s *Store) AddReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	return s.modifyReviews(ctx, id, bson.M{"$push": bson.M{"reviews": reviewID}})
}

// RemoveReview pulls reviewID from the campground's review list.
func (s *Store) RemoveReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	return s.modifyReviews(ctx, id, bson.M{"$pull": bson.M{"reviews": reviewID}})
}

func (s *Store) modifyReviews(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistingIDs reports which of ids still name a stored campground.
func (s *Store) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	out := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out[doc.ID] = true
	}
	return out, cur.Err()
}
