package listing_test

import (
	"context"
	"database/sql"
	"testing"

	applisting "github.com/foodforall/marketplace/application/listing"
	"github.com/foodforall/marketplace/cmd/config"
	"github.com/foodforall/marketplace/constant"
	listingmocks "github.com/foodforall/marketplace/mocks/repository/listing"
	"github.com/foodforall/marketplace/model"
	cerr "github.com/foodforall/marketplace/utils/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func record(id uint64, food, district, discounted string, qty int64, reserved ...string) model.ListingRecord {
	if reserved == nil {
		reserved = []string{}
	}
	return model.ListingRecord{
		ID:                id,
		RestaurantName:    "Cafe A",
		FoodName:          food,
		Description:       "surplus batch",
		Address:           "12 Main St",
		District:          district,
		OriginalPrice:     decimal.RequireFromString("10.00"),
		DiscountedPrice:   decimal.RequireFromString(discounted),
		QuantityAvailable: qty,
		Reserved:          reserved,
		Creator:           "cafe-a@example.com",
		Version:           1,
	}
}

func order(id uint64, user string) model.ListingRecord {
	rec := record(id, "Bagel", "Central", "1.99", 1)
	rec.Creator = ""
	rec.User = user
	return rec
}

func restaurantIdentity(email string) *model.TokenIdentity {
	return &model.TokenIdentity{AccountID: 1, Email: email, Role: constant.RoleRestaurant}
}

func TestListingApp_Create(t *testing.T) {
	validReq := func() *model.CreateListingRequest {
		return &model.CreateListingRequest{
			RestaurantName:  "Cafe A",
			FoodName:        "Bagel",
			Description:     "day-old bagels",
			Address:         "12 Main St",
			District:        "Central",
			OriginalPrice:   "4.50",
			DiscountedPrice: "1.99",
			Quantity:        3,
		}
	}

	t.Run("success: listing stored with creator email and empty reserved set", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.ListingRecord) bool {
			return rec.Creator == "cafe-a@example.com" && rec.User == "" &&
				rec.QuantityAvailable == 3 && len(rec.Reserved) == 0 &&
				rec.DiscountedPrice.Equal(decimal.RequireFromString("1.99")) &&
				rec.ExpiresAt == nil
		})).Return(uint64(11), nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		got, err := app.Create(context.Background(), restaurantIdentity("cafe-a@example.com"), validReq())

		require.NoError(t, err)
		assert.Equal(t, uint64(11), got.ListingID)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("error: only restaurants create listings", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		app := applisting.NewListingApp(&config.Config{}, repo, nil)

		identity := &model.TokenIdentity{AccountID: 2, Email: "u1@example.com", Role: constant.RoleUser}
		got, err := app.Create(context.Background(), identity, validReq())

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrUnauthorize).Error())
		assert.Nil(t, got)
	})

	t.Run("error: malformed price", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		app := applisting.NewListingApp(&config.Config{}, repo, nil)

		req := validReq()
		req.DiscountedPrice = "one fifty"
		_, err := app.Create(context.Background(), restaurantIdentity("cafe-a@example.com"), req)

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrInvalidRequest).Error())
	})

	t.Run("error: negative price", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		app := applisting.NewListingApp(&config.Config{}, repo, nil)

		req := validReq()
		req.OriginalPrice = "-4.50"
		_, err := app.Create(context.Background(), restaurantIdentity("cafe-a@example.com"), req)

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrInvalidRequest).Error())
	})
}

func TestListingApp_ListAvailable(t *testing.T) {
	records := []model.ListingRecord{
		record(1, "Bagel", "Central", "1.99", 3),
		record(2, "Soup", "Central", "5.25", 2),
		record(3, "Salad", "North", "3.10", 1),
		record(4, "Bread", "Central", "0.75", 0),                    // sold out
		record(5, "Pasta", "Central", "4.00", 2, "u1@example.com"),  // reserved by the caller
		order(6, "u1@example.com"),                                  // order record
	}

	t.Run("filters and orders by discounted price, highest first", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("QueryAll", mock.Anything, "discounted_price", true).Return(records, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		got, err := app.ListAvailable(context.Background(), "u1@example.com", constant.DistrictAny)

		require.NoError(t, err)
		require.Len(t, got.Items, 3)
		assert.Equal(t, uint64(2), got.Items[0].ID)
		assert.Equal(t, "5.25", got.Items[0].DiscountedPrice)
		assert.Equal(t, uint64(3), got.Items[1].ID)
		assert.Equal(t, uint64(1), got.Items[2].ID)
		assert.Equal(t, "1.99", got.Items[2].DiscountedPrice)
	})

	t.Run("district filter keeps only exact matches", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("QueryAll", mock.Anything, "discounted_price", true).Return(records, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		got, err := app.ListAvailable(context.Background(), "u2@example.com", "North")

		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, uint64(3), got.Items[0].ID)
	})

	t.Run("empty district behaves like Any", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("QueryAll", mock.Anything, "discounted_price", true).Return(records, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		got, err := app.ListAvailable(context.Background(), "u2@example.com", "")

		require.NoError(t, err)
		// u2 never reserved anything, so the Pasta listing comes back too.
		require.Len(t, got.Items, 4)
		assert.Equal(t, uint64(2), got.Items[0].ID)
	})
}

func TestListingApp_ListMyOrders(t *testing.T) {
	repo := listingmocks.NewListingRepository(t)
	repo.On("QueryAll", mock.Anything, "id", false).Return([]model.ListingRecord{
		record(1, "Bagel", "Central", "1.99", 3),
		order(6, "u1@example.com"),
		order(7, "u2@example.com"),
	}, nil).Once()

	app := applisting.NewListingApp(&config.Config{}, repo, nil)
	got, err := app.ListMyOrders(context.Background(), "u1@example.com")

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, uint64(6), got.Items[0].ID)
	assert.Equal(t, "Bagel", got.Items[0].FoodName)
}

func TestListingApp_Delete(t *testing.T) {
	t.Run("success: creator removes own listing", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := record(1, "Bagel", "Central", "1.99", 3)
		repo.On("Get", mock.Anything, uint64(1)).Return(&rec, nil).Once()
		repo.On("Delete", mock.Anything, uint64(1)).Return(nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		require.NoError(t, app.Delete(context.Background(), 1, "cafe-a@example.com"))
	})

	t.Run("error: not the creator", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := record(1, "Bagel", "Central", "1.99", 3)
		repo.On("Get", mock.Anything, uint64(1)).Return(&rec, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		err := app.Delete(context.Background(), 1, "cafe-b@example.com")

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrUnauthorize).Error())
	})

	t.Run("error: deleting an order record", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := order(6, "u1@example.com")
		repo.On("Get", mock.Anything, uint64(6)).Return(&rec, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		err := app.Delete(context.Background(), 6, "u1@example.com")

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrInvalidRequest).Error())
	})

	t.Run("error: listing not found", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("Get", mock.Anything, uint64(9)).Return(nil, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		err := app.Delete(context.Background(), 9, "cafe-a@example.com")

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrNotFound).Error())
	})
}

func TestListingApp_Expire(t *testing.T) {
	t.Run("success: open listing removed", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := record(1, "Bagel", "Central", "1.99", 3)
		repo.On("Get", mock.Anything, uint64(1)).Return(&rec, nil).Once()
		repo.On("Delete", mock.Anything, uint64(1)).Return(nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		require.NoError(t, app.Expire(context.Background(), 1))
	})

	t.Run("idempotent: already gone", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		repo.On("Get", mock.Anything, uint64(1)).Return(nil, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		require.NoError(t, app.Expire(context.Background(), 1))
	})

	t.Run("idempotent: record became an order", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := order(6, "u1@example.com")
		repo.On("Get", mock.Anything, uint64(6)).Return(&rec, nil).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		require.NoError(t, app.Expire(context.Background(), 6))
	})

	t.Run("idempotent: delete races with a reserve", func(t *testing.T) {
		repo := listingmocks.NewListingRepository(t)
		rec := record(1, "Bagel", "Central", "1.99", 1)
		repo.On("Get", mock.Anything, uint64(1)).Return(&rec, nil).Once()
		repo.On("Delete", mock.Anything, uint64(1)).Return(sql.ErrNoRows).Once()

		app := applisting.NewListingApp(&config.Config{}, repo, nil)
		require.NoError(t, app.Expire(context.Background(), 1))
	})
}
