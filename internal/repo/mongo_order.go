package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/partify/internal/models"
)

func (r *MongoRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	t := now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = t
	}
	order.UpdatedAt = t
	_, err := r.DB.Orders.InsertOne(ctx, order)
	return mongoErr(err)
}

func (r *MongoRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.Orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, mongoErr(err)
	}
	return &o, nil
}

func (r *MongoRepo) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.DB.Orders, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (r *MongoRepo) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.Order](ctx, r.DB.Orders, bson.M{}, opts)
}

func (r *MongoRepo) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	set := bson.M{"status": status, "updatedAt": now()}
	if deliveredAt != nil {
		set["isDelivered"] = true
		set["deliveredAt"] = *deliveredAt
	}
	res, err := r.DB.Orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) ResetDeliveredOrders(ctx context.Context) (int64, error) {
	res, err := r.DB.Orders.UpdateMany(ctx,
		bson.M{"status": models.StatusDelivered},
		bson.M{"$set": bson.M{
			"status":      models.StatusPending,
			"isDelivered": false,
			"deliveredAt": nil,
			"updatedAt":   now(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepo) CountOrders(ctx context.Context) (int64, error) {
	return r.DB.Orders.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepo) DeliveredRevenue(ctx context.Context) (float64, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"status": models.StatusDelivered}},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}},
	}
	cur, err := r.DB.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
