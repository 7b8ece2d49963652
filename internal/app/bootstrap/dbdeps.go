// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/yelpcamp/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Sweeper removes reviews left behind by an interrupted campground delete.
	Sweeper *workers.OrphanSweeper
}
