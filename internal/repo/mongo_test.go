package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/mongodb"
)

func TestProductFilterDoc(t *testing.T) {
	t.Parallel()

	year := 2019

	tests := []struct {
		name   string
		filter ProductFilter
		want   bson.M
	}{
		{name: "empty", filter: ProductFilter{}, want: bson.M{}},
		{
			name:   "exact fields",
			filter: ProductFilter{Category: "Brakes", Featured: true, Make: "Toyota", Year: &year, IDs: []string{"a", "b"}},
			want: bson.M{
				"category":        "Brakes",
				"isFeatured":      true,
				"compatibleMakes": "Toyota",
				"compatibleYears": 2019,
				"_id":             bson.M{"$in": []string{"a", "b"}},
			},
		},
		{
			name:   "search only",
			filter: ProductFilter{Search: "pad.s"},
			want: bson.M{"$or": bson.A{
				bson.M{"name": bson.M{"$regex": `pad\.s`, "$options": "i"}},
				bson.M{"partNumber": bson.M{"$regex": `pad\.s`, "$options": "i"}},
				bson.M{"category": bson.M{"$regex": `pad\.s`, "$options": "i"}},
			}},
		},
		{
			name:   "search and model are conjunctive",
			filter: ProductFilter{Search: "pad", Model: "camry"},
			want: bson.M{"$and": bson.A{
				bson.M{"$or": bson.A{
					bson.M{"name": bson.M{"$regex": "pad", "$options": "i"}},
					bson.M{"partNumber": bson.M{"$regex": "pad", "$options": "i"}},
					bson.M{"category": bson.M{"$regex": "pad", "$options": "i"}},
				}},
				bson.M{"$or": bson.A{
					bson.M{"description": bson.M{"$regex": "camry", "$options": "i"}},
					bson.M{"name": bson.M{"$regex": "camry", "$options": "i"}},
				}},
			}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, productFilterDoc(tt.filter))
		})
	}
}

// newMongoTestRepo connects to MONGO_TEST_URI and uses a throwaway database.
func newMongoTestRepo(t *testing.T) *MongoRepo {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}

	ctx := context.Background()
	m, err := mongodb.Connect(ctx, uri, "partify_test_"+models.NewID()[:8])
	require.NoError(t, err)
	require.NoError(t, m.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = m.Products.Database().Drop(context.Background())
		_ = m.Disconnect(context.Background())
	})
	return &MongoRepo{DB: m}
}

func TestMongoRepo_ProductsAndOrders(t *testing.T) {
	r := newMongoTestRepo(t)
	ctx := context.Background()

	p := &models.Product{
		Name: "Ceramic Brake Pads", PartNumber: "BP-100", Category: models.CategoryBrakes,
		Description: "Fits Camry", Image: "/p.png", CompatibleMakes: []string{"Toyota"}, CompatibleYears: []int{2019},
	}
	require.NoError(t, r.CreateProduct(ctx, p))
	assert.ErrorIs(t, r.CreateProduct(ctx, &models.Product{Name: "dup", PartNumber: "BP-100"}), ErrDuplicate)

	year := 2019
	total, items, err := r.ListProducts(ctx, ProductFilter{Category: "Brakes", Search: "PAD", Make: "Toyota", Year: &year}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID)

	o := newOrder("u1", models.StatusPending, 108, 0)
	require.NoError(t, r.CreateOrder(ctx, o))
	at := time.Now().UTC()
	require.NoError(t, r.UpdateOrderStatus(ctx, o.ID, models.StatusDelivered, &at))

	revenue, err := r.DeliveredRevenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 108, revenue, 0.0001)

	_, err = r.ResetDeliveredOrders(ctx)
	require.NoError(t, err)
	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.DeliveredAt)

	_, err = r.GetOrder(ctx, models.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}
