package reservation_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	appreservation "github.com/foodforall/marketplace/application/reservation"
	"github.com/foodforall/marketplace/cmd/config"
	"github.com/foodforall/marketplace/constant"
	listingmocks "github.com/foodforall/marketplace/mocks/repository/listing"
	txmocks "github.com/foodforall/marketplace/mocks/repository/tx"
	"github.com/foodforall/marketplace/model"
	cerr "github.com/foodforall/marketplace/utils/errors"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openListing(id uint64, qty int64, reserved ...string) *model.ListingRecord {
	if reserved == nil {
		reserved = []string{}
	}
	return &model.ListingRecord{
		ID:                id,
		RestaurantName:    "Cafe A",
		FoodName:          "Bagel",
		Description:       "day-old bagels",
		Address:           "12 Main St",
		District:          "Central",
		OriginalPrice:     decimal.RequireFromString("4.50"),
		DiscountedPrice:   decimal.RequireFromString("1.99"),
		QuantityAvailable: qty,
		Reserved:          reserved,
		Creator:           "cafe-a@example.com",
		Version:           1,
	}
}

func orderRecord(id uint64, user string) *model.ListingRecord {
	rec := openListing(id, 1)
	rec.Reserved = []string{}
	rec.Creator = ""
	rec.User = user
	return rec
}

func TestReservationApp_Reserve(t *testing.T) {
	type fields struct {
		config      *config.Config
		txRepo      *txmocks.TxRepository
		listingRepo *listingmocks.ListingRepository
	}
	type args struct {
		ctx       context.Context
		listingID uint64
		userEmail string
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		want     *model.ReserveResponse
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: quantity above one decrements in place",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 3), nil).Once()

				f.listingRepo.On("Update", mock.Anything, uint64(7), mock.MatchedBy(func(p *model.ListingPatch) bool {
					return p.QuantityAvailable != nil && *p.QuantityAvailable == 2 &&
						p.Reserved != nil && len(*p.Reserved) == 1 && (*p.Reserved)[0] == "u1@example.com"
				})).Return(nil).Once()

				f.listingRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.ListingRecord) bool {
					return rec.User == "u1@example.com" && rec.QuantityAvailable == 1 &&
						rec.FoodName == "Bagel" && rec.RestaurantName == "Cafe A" &&
						len(rec.Reserved) == 0 && rec.Creator == ""
				})).Return(uint64(42), nil).Once()
			},
			want: &model.ReserveResponse{OrderID: 42},
		},
		{
			name: "success: last unit deletes the listing",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u2@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 1), nil).Once()
				f.listingRepo.On("Delete", mock.Anything, uint64(7)).Return(nil).Once()
				f.listingRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.ListingRecord) bool {
					return rec.User == "u2@example.com" && rec.QuantityAvailable == 1
				})).Return(uint64(43), nil).Once()
			},
			want: &model.ReserveResponse{OrderID: 43},
		},
		{
			name: "error: listing vanished before the read",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 9, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(9)).Return(nil, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrListingGone,
		},
		{
			name: "error: reserving an order record",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 5, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(5)).Return(orderRecord(5, "someone@example.com"), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrInvalidRequest,
		},
		{
			name: "error: no quantity left",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 0), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrListingUnavailable,
		},
		{
			name: "error: user already claimed a unit",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 2, "u1@example.com"), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrAlreadyReserved,
		},
		{
			name: "error: listing vanished between read and update",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 3), nil).Once()
				f.listingRepo.On("Update", mock.Anything, uint64(7), mock.Anything).Return(sql.ErrNoRows).Once()
			},
			wantErr: true,
			errCode: constant.ErrListingGone,
		},
		{
			name: "error: order create fails after the listing delete, partial state remains",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), listingID: 7, userEmail: "u2@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 1), nil).Once()
				f.listingRepo.On("Delete", mock.Anything, uint64(7)).Return(nil).Once()
				// No compensating re-create is expected: the listing stays
				// deleted and the order never materializes.
				f.listingRepo.On("Create", mock.Anything, mock.Anything).Return(uint64(0), errors.New("store down")).Once()
			},
			wantErr: true,
			errCode: constant.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}

			app := appreservation.NewReservationApp(tt.fields.config, tt.fields.txRepo, tt.fields.listingRepo)
			got, err := app.Reserve(tt.args.ctx, tt.args.listingID, tt.args.userEmail)

			if tt.wantErr {
				require.Error(t, err)
				assert.EqualError(t, err, cerr.SetCustomError(tt.errCode).Error())
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReservationApp_ReserveConditionalWrites(t *testing.T) {
	cfg := &config.Config{Reservation: config.ReservationConfig{ConditionalWrites: true}}

	t.Run("success: guarded decrement and order create commit together", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		listingRepo := listingmocks.NewListingRepository(t)

		tx := &sqlx.Tx{}
		listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 3), nil).Once()
		txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		listingRepo.On("UpdateGuardedTx", mock.Anything, tx, uint64(7), uint64(1), mock.MatchedBy(func(p *model.ListingPatch) bool {
			return p.QuantityAvailable != nil && *p.QuantityAvailable == 2
		})).Return(nil).Once()
		listingRepo.On("CreateTx", mock.Anything, tx, mock.MatchedBy(func(rec *model.ListingRecord) bool {
			return rec.User == "u1@example.com" && rec.QuantityAvailable == 1
		})).Return(uint64(42), nil).Once()
		txRepo.On("CommitTx", tx).Return(nil).Once()

		app := appreservation.NewReservationApp(cfg, txRepo, listingRepo)
		got, err := app.Reserve(context.Background(), 7, "u1@example.com")

		require.NoError(t, err)
		assert.Equal(t, &model.ReserveResponse{OrderID: 42}, got)
	})

	t.Run("conflict: stale version token rolls back and reports the listing gone", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		listingRepo := listingmocks.NewListingRepository(t)

		tx := &sqlx.Tx{}
		listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 1), nil).Once()
		txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		listingRepo.On("DeleteGuardedTx", mock.Anything, tx, uint64(7), uint64(1)).Return(sql.ErrNoRows).Once()
		txRepo.On("RollbackTx", tx).Return(nil).Once()

		app := appreservation.NewReservationApp(cfg, txRepo, listingRepo)
		got, err := app.Reserve(context.Background(), 7, "u2@example.com")

		require.Error(t, err)
		assert.EqualError(t, err, cerr.SetCustomError(constant.ErrListingGone).Error())
		assert.Nil(t, got)
	})
}

func TestReservationApp_Cancel(t *testing.T) {
	type fields struct {
		config      *config.Config
		txRepo      *txmocks.TxRepository
		listingRepo *listingmocks.ListingRepository
	}
	type args struct {
		ctx         context.Context
		orderID     uint64
		callerEmail string
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: matching open listing gets the unit back",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), orderID: 42, callerEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(42)).Return(orderRecord(42, "u1@example.com"), nil).Once()
				f.listingRepo.On("Delete", mock.Anything, uint64(42)).Return(nil).Once()

				open := openListing(7, 2, "u1@example.com")
				f.listingRepo.On("QueryAll", mock.Anything, "id", false).Return([]model.ListingRecord{*open}, nil).Once()

				f.listingRepo.On("Update", mock.Anything, uint64(7), mock.MatchedBy(func(p *model.ListingPatch) bool {
					return p.QuantityAvailable != nil && *p.QuantityAvailable == 3 && p.Reserved == nil
				})).Return(nil).Once()
			},
		},
		{
			name: "success: no open listing left, recreated with one unit and empty reserved set",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), orderID: 43, callerEmail: "u2@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(43)).Return(orderRecord(43, "u2@example.com"), nil).Once()
				f.listingRepo.On("Delete", mock.Anything, uint64(43)).Return(nil).Once()
				f.listingRepo.On("QueryAll", mock.Anything, "id", false).Return([]model.ListingRecord{}, nil).Once()

				// The recreated listing carries no reserved set and no
				// creator; neither survives on the order record.
				f.listingRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.ListingRecord) bool {
					return rec.User == "" && rec.QuantityAvailable == 1 &&
						len(rec.Reserved) == 0 && rec.Creator == "" &&
						rec.RestaurantName == "Cafe A" && rec.FoodName == "Bagel"
				})).Return(uint64(50), nil).Once()
			},
		},
		{
			name: "error: canceling someone else's order",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), orderID: 42, callerEmail: "intruder@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(42)).Return(orderRecord(42, "u1@example.com"), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrUnauthorize,
		},
		{
			name: "error: canceling an open listing",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), orderID: 7, callerEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 2), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrInvalidRequest,
		},
		{
			name: "error: order already gone",
			fields: fields{
				config:      &config.Config{},
				txRepo:      txmocks.NewTxRepository(t),
				listingRepo: listingmocks.NewListingRepository(t),
			},
			args: args{ctx: context.Background(), orderID: 99, callerEmail: "u1@example.com"},
			mockCall: func(f fields) {
				f.listingRepo.On("Get", mock.Anything, uint64(99)).Return(nil, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}

			app := appreservation.NewReservationApp(tt.fields.config, tt.fields.txRepo, tt.fields.listingRepo)
			err := app.Cancel(tt.args.ctx, tt.args.orderID, tt.args.callerEmail)

			if tt.wantErr {
				require.Error(t, err)
				assert.EqualError(t, err, cerr.SetCustomError(tt.errCode).Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

// A cancel followed by a reserve of the same food by the same user puts
// the quantity back where it started when the open listing survived.
func TestReservationApp_CancelThenReserveRestoresQuantity(t *testing.T) {
	txRepo := txmocks.NewTxRepository(t)
	listingRepo := listingmocks.NewListingRepository(t)
	app := appreservation.NewReservationApp(&config.Config{}, txRepo, listingRepo)

	// Cancel: order 42 returns a unit to listing 7 (qty 2 -> 3).
	listingRepo.On("Get", mock.Anything, uint64(42)).Return(orderRecord(42, "u1@example.com"), nil).Once()
	listingRepo.On("Delete", mock.Anything, uint64(42)).Return(nil).Once()
	listingRepo.On("QueryAll", mock.Anything, "id", false).Return([]model.ListingRecord{*openListing(7, 2)}, nil).Once()
	listingRepo.On("Update", mock.Anything, uint64(7), mock.MatchedBy(func(p *model.ListingPatch) bool {
		return p.QuantityAvailable != nil && *p.QuantityAvailable == 3
	})).Return(nil).Once()

	require.NoError(t, app.Cancel(context.Background(), 42, "u1@example.com"))

	// Reserve: listing 7 at qty 3 goes back to 2 for the same user.
	listingRepo.On("Get", mock.Anything, uint64(7)).Return(openListing(7, 3), nil).Once()
	listingRepo.On("Update", mock.Anything, uint64(7), mock.MatchedBy(func(p *model.ListingPatch) bool {
		return p.QuantityAvailable != nil && *p.QuantityAvailable == 2
	})).Return(nil).Once()
	listingRepo.On("Create", mock.Anything, mock.Anything).Return(uint64(60), nil).Once()

	got, err := app.Reserve(context.Background(), 7, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, &model.ReserveResponse{OrderID: 60}, got)
}
