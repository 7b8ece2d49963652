// internal/domain/models/campground.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campground is a listing that users can browse and review.
//
// Reviews holds references into the reviews collection, in the order they
// were added. While the campground exists every id must point at a stored
// Review; deleting the campground deletes them (see campgroundstore.Delete).
type Campground struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Title       string               `bson:"title" json:"title"`
	TitleCI     string               `bson:"title_ci" json:"-"` // folded, for sorting
	Image       string               `bson:"image" json:"image"`
	Price       float64              `bson:"price" json:"price"`
	Location    string               `bson:"location" json:"location"`
	Description string               `bson:"description" json:"description"`
	Reviews     []primitive.ObjectID `bson:"reviews" json:"reviews"`

	AuthorID  *primitive.ObjectID `bson:"author_id,omitempty" json:"author_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// HasReviews reports whether any review is attached.
func (c *Campground) HasReviews() bool {
	return len(c.Reviews) > 0
}
