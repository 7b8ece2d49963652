package userstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// BcryptCost is the work factor for new password hashes. Tests lower it.
var BcryptCost = bcrypt.DefaultCost

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username_ci": text.Fold(strings.TrimSpace(username))})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Register creates a password user. The password is stored only as a bcrypt
// hash. A username that folds to an existing one yields ErrDuplicateUsername.
func (s *Store) Register(ctx context.Context, username, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.create(ctx, models.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		AuthMethod:   models.AuthPassword,
	})
}

func (s *Store) create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.UsernameCI = text.Fold(u.Username)
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate returns the password user matching username and password.
// Unknown users, Google-only users and wrong passwords all produce
// ErrInvalidCredentials so the caller cannot tell them apart.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

var nonUsername = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FindOrCreateGoogle returns the user linked to googleID, creating one on
// first sign-in. The username derives from the email's local part and gets a
// numeric suffix when taken.
func (s *Store) FindOrCreateGoogle(ctx context.Context, googleID, email string) (*models.User, error) {
	u, err := s.findOne(ctx, bson.M{"google_id": googleID})
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}
	base = nonUsername.ReplaceAllString(base, "")
	if len(base) < 3 {
		base = "camper"
	}

	gid := googleID
	for i := 0; i < 20; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s%d", base, i)
		}
		created, err := s.create(ctx, models.User{
			Username:   name,
			Email:      strings.ToLower(strings.TrimSpace(email)),
			AuthMethod: models.AuthGoogle,
			GoogleID:   &gid,
		})
		if errors.Is(err, ErrDuplicateUsername) {
			// Either the name is taken or a concurrent sign-in linked this
			// Google account first.
			if u, ferr := s.findOne(ctx, bson.M{"google_id": googleID}); ferr == nil {
				return u, nil
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, ErrDuplicateUsername
}
