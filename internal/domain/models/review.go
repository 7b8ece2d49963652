package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rated comment on a campground.
type Review struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	Body         string              `bson:"body" json:"body"`
	Rating       int                 `bson:"rating" json:"rating"` // 1..5
	CampgroundID primitive.ObjectID  `bson:"campground_id" json:"campground_id"`
	AuthorID     *primitive.ObjectID `bson:"author_id,omitempty" json:"author_id,omitempty"`
	AuthorName   string              `bson:"author_name,omitempty" json:"author_name,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}

// MinRating and MaxRating bound Review.Rating.
const (
	MinRating = 1
	MaxRating = 5
)

// IsAuthor reports whether userID wrote this review.
func (r *Review) IsAuthor(userID primitive.ObjectID) bool {
	return r.AuthorID != nil && *r.AuthorID == userID
}
