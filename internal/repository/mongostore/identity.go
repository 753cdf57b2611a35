package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

type adminRepository struct {
	col *mongo.Collection
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	stamp(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	return insertOne(ctx, r.col, adminToDoc(admin))
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	doc, err := findOne[identityDoc](ctx, r.col, byID(id.String()))
	if err != nil {
		return nil, err
	}
	return doc.toAdmin()
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	doc, err := findOne[identityDoc](ctx, r.col, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	return doc.toAdmin()
}

type userRepository struct {
	col *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return insertOne(ctx, r.col, userToDoc(user))
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	doc, err := findOne[identityDoc](ctx, r.col, byID(id.String()))
	if err != nil {
		return nil, err
	}
	return doc.toUser()
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := findOne[identityDoc](ctx, r.col, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	return doc.toUser()
}

func (r *adminRepository) SetImageRef(ctx context.Context, id uuid.UUID, ref string) error {
	return setImageRef(ctx, r.col, id, ref)
}

func (r *userRepository) SetImageRef(ctx context.Context, id uuid.UUID, ref string) error {
	return setImageRef(ctx, r.col, id, ref)
}

func setImageRef(ctx context.Context, col *mongo.Collection, id uuid.UUID, ref string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "image_ref", Value: ref},
		{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}
	res, err := col.UpdateOne(ctx, byID(id.String()), update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
