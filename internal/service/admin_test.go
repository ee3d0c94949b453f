package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/partify/internal/models"
)

func TestAdminService_StatsAndResetRevenue(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()

	catalog := &CatalogService{Repo: f.repo}
	_, err := catalog.CreateProduct(ctx, validProduct("Pads", "BP-1", models.CategoryBrakes))
	require.NoError(t, err)

	admin := &AdminService{Products: f.repo, Orders: f.repo, Users: f.repo, Events: f.pub}

	var ids []string
	for i := 0; i < 7; i++ {
		o, err := f.svc.CreateOrder(ctx, f.alice.ID, orderRequest(item(models.NewID(), 100, 1)))
		require.NoError(t, err)
		setCreatedAt(t, f.repo, &models.Order{}, o.ID, fixedNow.Add(time.Duration(i)*time.Minute))
		ids = append(ids, o.ID)
	}
	_, err = f.svc.SetOrderStatus(ctx, ids[0], "Delivered")
	require.NoError(t, err)
	_, err = f.svc.SetOrderStatus(ctx, ids[1], "Delivered")
	require.NoError(t, err)
	_, err = f.svc.SetOrderStatus(ctx, ids[2], "Shipped")
	require.NoError(t, err)

	stats, err := admin.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ProductCount)
	assert.Equal(t, int64(7), stats.OrderCount)
	assert.Equal(t, int64(3), stats.UserCount)
	assert.InDelta(t, 216.0, stats.Revenue, 0.001)
	require.Len(t, stats.RecentOrders, recentOrdersLimit)
	assert.Equal(t, ids[6], stats.RecentOrders[0].ID)
	require.NotNil(t, stats.RecentOrders[0].Customer)
	assert.Equal(t, "Alice", stats.RecentOrders[0].Customer.Name)

	n, err := admin.ResetRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err = admin.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Revenue)

	reset, err := f.svc.GetOrder(ctx, ids[0], f.admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reset.Status)
	assert.False(t, reset.IsDelivered)
	assert.Nil(t, reset.DeliveredAt)

	shipped, err := f.svc.GetOrder(ctx, ids[2], f.admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, shipped.Status)

	assert.Contains(t, f.pub.types(), "revenue_reset")
}

func TestAdminService_EmptyStore(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	admin := &AdminService{Products: r, Orders: r, Users: r}

	stats, err := admin.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.OrderCount)
	assert.Zero(t, stats.Revenue)
	assert.Empty(t, stats.RecentOrders)

	n, err := admin.ResetRevenue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
