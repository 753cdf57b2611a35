// Package mongostore implements the repository interfaces on MongoDB.
//
// Documents use string _id values holding the UUID text form, and prices are
// stored as Decimal128 so sorting by price stays numeric.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"coursemarket/internal/repository"
)

var (
	_ repository.AdminRepository    = (*adminRepository)(nil)
	_ repository.UserRepository     = (*userRepository)(nil)
	_ repository.CourseRepository   = (*courseRepository)(nil)
	_ repository.PurchaseRepository = (*purchaseRepository)(nil)
)

// Collection names.
const (
	ColAdmins    = "admins"
	ColUsers     = "users"
	ColCourses   = "courses"
	ColPurchases = "purchases"
)

// Store holds the MongoDB connection shared by the repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects, pings and ensures indexes. Index creation must succeed:
// the unique indexes are what keep emails and purchases unique.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure indexes failed: %w", err)
	}
	logrus.WithField("database", dbName).Info("mongostore ready")
	return s, nil
}

// Repositories exposes the store as a repository.Store.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Admins:    &adminRepository{col: s.col(ColAdmins)},
		Users:     &userRepository{col: s.col(ColUsers)},
		Courses:   &courseRepository{col: s.col(ColCourses)},
		Purchases: &purchaseRepository{col: s.col(ColPurchases)},
		Close:     s.Close,
	}
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

type index struct {
	col    string
	keys   bson.D
	unique bool
}

var indexes = []index{
	{ColAdmins, bson.D{{Key: "email", Value: 1}}, true},
	{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

	{ColCourses, bson.D{{Key: "owner_admin_id", Value: 1}}, false},
	{ColCourses, bson.D{{Key: "created_at", Value: -1}}, false},

	{ColPurchases, bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}}, true},
	{ColPurchases, bson.D{{Key: "course_id", Value: 1}}, false},
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for _, ix := range indexes {
		im := mongo.IndexModel{Keys: ix.keys}
		if ix.unique {
			im.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(ix.col).Indexes().CreateOne(ctx, im); err != nil {
			return fmt.Errorf("%s %v: %w", ix.col, ix.keys, err)
		}
	}
	return nil
}
