package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"coursemarket/internal/model"
)

type purchaseRepository struct {
	col *mongo.Collection
}

// Create relies on the unique {user_id, course_id} index for at-most-once.
func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	stamp(&purchase.ID, &purchase.CreatedAt, nil)
	return insertOne(ctx, r.col, purchaseDoc{
		ID:        purchase.ID.String(),
		UserID:    purchase.UserID.String(),
		CourseID:  purchase.CourseID.String(),
		CreatedAt: purchase.CreatedAt,
	})
}

func (r *purchaseRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Purchase, error) {
	doc, err := findOne[purchaseDoc](ctx, r.col, bson.D{
		{Key: "user_id", Value: userID.String()},
		{Key: "course_id", Value: courseID.String()},
	})
	if err != nil {
		return nil, err
	}
	p, err := doc.toPurchase()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findMany[purchaseDoc](ctx, r.col, bson.D{{Key: "user_id", Value: userID.String()}}, opts)
	if err != nil {
		return nil, err
	}
	purchases := make([]model.Purchase, 0, len(docs))
	for _, d := range docs {
		p, err := d.toPurchase()
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}
