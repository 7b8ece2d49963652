package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		coll   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"campgrounds", ensureCampgrounds},
		{"reviews", ensureReviews},
		{"users", ensureUsers},
		{"oauth_states", ensureOAuthStates},
	}
	for _, s := range sets {
		if err := s.ensure(ctx, db); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a desired index set against what the collection already has      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

// spec is the comparable shape of an index: key pattern plus the options we
// care about. Two indexes with the same keys but a different spec conflict.
type spec struct {
	name   string
	keys   string
	unique bool
	ttl    int32 // -1 when not a TTL index
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func desiredSpec(m mongo.IndexModel) spec {
	s := spec{keys: keySig(m.Keys.(bson.D)), ttl: -1}
	if o := m.Options; o != nil {
		if o.Name != nil {
			s.name = *o.Name
		}
		s.unique = o.Unique != nil && *o.Unique
		if o.ExpireAfterSeconds != nil {
			s.ttl = *o.ExpireAfterSeconds
		}
	}
	return s
}

func (e existingIndex) spec() spec {
	s := spec{name: e.Name, keys: keySig(e.Key), ttl: -1}
	s.unique = e.Unique != nil && *e.Unique
	if e.ExpireAfterSeconds != nil {
		s.ttl = *e.ExpireAfterSeconds
	}
	return s
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes; CreateOne
		// creates it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		want := desiredSpec(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", want.name),
			zap.String("keys", want.keys),
			zap.Bool("unique", want.unique))

		if ex, ok := existing[want.keys]; ok {
			have := ex.spec()
			if have.unique == want.unique && have.ttl == want.ttl && (want.name == "" || have.name == want.name) {
				log.Debug("reusing existing index", zap.Duration("took", time.Since(start)))
				continue
			}
			// Options or name differ: drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), want.name, err))
				continue
			}
			log.Info("dropped index for recreate", zap.String("existing", ex.Name))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isDuplicateKeyErr(err) && want.unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), want.name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), want.name, err))
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.String("created_name", created), zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureCampgrounds(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("campgrounds"), []mongo.IndexModel{
		// Index page sorts by folded title; _id breaks ties.
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_campgrounds_titleci_id"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("idx_campgrounds_author"),
		},
	})
}

func ensureReviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reviews"), []mongo.IndexModel{
		// Orphan sweep groups by campground_id; cascade by campground uses it too.
		{
			Keys:    bson.D{{Key: "campground_id", Value: 1}},
			Options: options.Index().SetName("idx_reviews_campground"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("idx_reviews_author"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		// Only Google-linked users carry google_id.
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_googleid").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$type": "string"}}),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_states"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauthstates_state"),
		},
		// TTL: documents are removed once expires_at passes.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauthstates_expiresat"),
		},
	})
}
