package repo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/mongodb"
)

// MongoRepo implements the same persistence surface as GormRepo on top of
// a MongoDB document store.
type MongoRepo struct {
	DB *mongodb.MongoDB
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.DB.Client.Ping(ctx, nil)
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// productFilterDoc translates a ProductFilter into a query document.
func productFilterDoc(f ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Featured {
		filter["isFeatured"] = true
	}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	if f.Make != "" {
		filter["compatibleMakes"] = f.Make
	}
	if f.Year != nil {
		filter["compatibleYears"] = *f.Year
	}

	var or []bson.M
	if f.Search != "" {
		or = append(or, bson.M{"$or": bson.A{
			bson.M{"name": containsRegex(f.Search)},
			bson.M{"partNumber": containsRegex(f.Search)},
			bson.M{"category": containsRegex(f.Search)},
		}})
	}
	if f.Model != "" {
		or = append(or, bson.M{"$or": bson.A{
			bson.M{"description": containsRegex(f.Model)},
			bson.M{"name": containsRegex(f.Model)},
		}})
	}
	switch len(or) {
	case 1:
		filter["$or"] = or[0]["$or"]
	case 2:
		filter["$and"] = bson.A{or[0], or[1]}
	}
	return filter
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *MongoRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	filter := productFilterDoc(f)
	total, err := r.DB.Products.CountDocuments(ctx, filter)
	if err != nil {
		return 0, nil, err
	}

	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetSkip(int64(offset)).SetLimit(int64(limit))
	}
	items, err := findAll[models.Product](ctx, r.DB.Products, filter, opts)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *MongoRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mongoErr(err)
	}
	return &p, nil
}

func (r *MongoRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return findAll[models.Product](ctx, r.DB.Products, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if prod.ID == "" {
		prod.ID = models.NewID()
	}
	t := now()
	if prod.CreatedAt.IsZero() {
		prod.CreatedAt = t
	}
	prod.UpdatedAt = t
	_, err := r.DB.Products.InsertOne(ctx, prod)
	return mongoErr(err)
}

func (r *MongoRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	prod.UpdatedAt = now()
	res, err := r.DB.Products.ReplaceOne(ctx, bson.M{"_id": prod.ID}, prod)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.DB.Products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) PartNumberTaken(ctx context.Context, partNumber, exceptID string) (bool, error) {
	filter := bson.M{"partNumber": partNumber}
	if exceptID != "" {
		filter["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := r.DB.Products.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.DB.Products.CountDocuments(ctx, bson.M{})
}
