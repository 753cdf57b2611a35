package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

type courseRepository struct {
	col *mongo.Collection
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	stamp(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	doc, err := courseToDoc(course)
	if err != nil {
		return err
	}
	return insertOne(ctx, r.col, doc)
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	price, err := encodePrice(course.Price)
	if err != nil {
		return err
	}
	course.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	set := bson.D{
		{Key: "title", Value: course.Title},
		{Key: "description", Value: course.Description},
		{Key: "price", Value: price},
		{Key: "updated_at", Value: course.UpdatedAt},
	}
	var update bson.D
	if course.ImageRef != nil {
		set = append(set, bson.E{Key: "image_ref", Value: *course.ImageRef})
		update = bson.D{{Key: "$set", Value: set}}
	} else {
		update = bson.D{
			{Key: "$set", Value: set},
			{Key: "$unset", Value: bson.D{{Key: "image_ref", Value: ""}}},
		}
	}

	res, err := r.col.UpdateOne(ctx, byID(course.ID.String()), update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, byID(id.String()))
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	doc, err := findOne[courseDoc](ctx, r.col, byID(id.String()))
	if err != nil {
		return nil, err
	}
	course, err := doc.toCourse()
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Course, error) {
	if len(ids) == 0 {
		return []model.Course{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	docs, err := findMany[courseDoc](ctx, r.col, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}})
	if err != nil {
		return nil, err
	}
	return toCourses(docs)
}

func (r *courseRepository) List(ctx context.Context, q model.CourseQuery) ([]model.Course, int64, error) {
	filter := listFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	if total == 0 {
		return []model.Course{}, 0, nil
	}

	opts := options.Find().
		SetSort(listSort(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	docs, err := findMany[courseDoc](ctx, r.col, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	courses, err := toCourses(docs)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func listFilter(q model.CourseQuery) bson.D {
	if q.OwnerAdminID == nil {
		return bson.D{}
	}
	return bson.D{{Key: "owner_admin_id", Value: q.OwnerAdminID.String()}}
}

// listSort orders by the requested field, with _id as a stable tiebreak.
func listSort(q model.CourseQuery) bson.D {
	dir := 1
	if q.Desc {
		dir = -1
	}
	return bson.D{
		{Key: q.SortBy.Column(), Value: dir},
		{Key: "_id", Value: 1},
	}
}

func toCourses(docs []courseDoc) ([]model.Course, error) {
	courses := make([]model.Course, 0, len(docs))
	for _, d := range docs {
		c, err := d.toCourse()
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}
