package listing

import (
	"context"
	"database/sql"
	goerrors "errors"
	"sort"
	"time"

	"github.com/foodforall/marketplace/cmd/config"
	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/model"
	listingrepo "github.com/foodforall/marketplace/repository/listing"
	"github.com/foodforall/marketplace/thirdparty/rabbitmq"
	"github.com/foodforall/marketplace/utils/errors"
	"github.com/foodforall/marketplace/utils/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ListingApp interface {
	Create(ctx context.Context, creator *model.TokenIdentity, req *model.CreateListingRequest) (*model.CreateListingResponse, error)
	ListAvailable(ctx context.Context, forUser, district string) (*model.ListingListResponse, error)
	ListMyOrders(ctx context.Context, forUser string) (*model.OrderListResponse, error)
	Delete(ctx context.Context, listingID uint64, callerEmail string) error
	Expire(ctx context.Context, listingID uint64) error
}

type listingAppImpl struct {
	config      *config.Config
	listingRepo listingrepo.ListingRepository
	publisher   *rabbitmq.Publisher
}

func NewListingApp(config *config.Config, listingRepo listingrepo.ListingRepository, publisher *rabbitmq.Publisher) ListingApp {
	return &listingAppImpl{config: config, listingRepo: listingRepo, publisher: publisher}
}

func (s *listingAppImpl) Create(ctx context.Context, creator *model.TokenIdentity, req *model.CreateListingRequest) (*model.CreateListingResponse, error) {
	if creator.Role != constant.RoleRestaurant {
		return nil, errors.SetCustomError(constant.ErrUnauthorize)
	}

	original, err := decimal.NewFromString(req.OriginalPrice)
	if err != nil || original.IsNegative() {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}
	discounted, err := decimal.NewFromString(req.DiscountedPrice)
	if err != nil || discounted.IsNegative() {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	rec := &model.ListingRecord{
		RestaurantName:    req.RestaurantName,
		FoodName:          req.FoodName,
		Description:       req.Description,
		Address:           req.Address,
		District:          req.District,
		OriginalPrice:     original,
		DiscountedPrice:   discounted,
		QuantityAvailable: req.Quantity,
		Reserved:          []string{},
		Creator:           creator.Email,
	}

	if s.config.Listing.ExpirationWindow > 0 {
		expiresAt := time.Now().Add(s.config.Listing.ExpirationWindow)
		rec.ExpiresAt = &expiresAt
	}

	listingID, err := s.listingRepo.Create(ctx, rec)
	if err != nil {
		logger.Error("[CreateListing] err listingRepo.Create", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	// Publish listing expiration message to RabbitMQ
	if s.publisher != nil && rec.ExpiresAt != nil {
		msg := rabbitmq.ListingExpirationMessage{
			ListingID: listingID,
			ExpiresAt: *rec.ExpiresAt,
		}
		if err := s.publisher.PublishListingExpiration(msg); err != nil {
			logger.Error("[CreateListing] publish listing expiration", zap.String("error", err.Error()))
		}
	}

	return &model.CreateListingResponse{ListingID: listingID, ExpiresAt: rec.ExpiresAt}, nil
}

// ListAvailable returns open listings the given user can still claim,
// most expensive discount first. The collection stores prices as text, so
// the numeric ordering is applied here on the decoded decimals rather
// than trusting the store's lexicographic sort.
func (s *listingAppImpl) ListAvailable(ctx context.Context, forUser, district string) (*model.ListingListResponse, error) {
	records, err := s.listingRepo.QueryAll(ctx, "discounted_price", true)
	if err != nil {
		logger.Error("[ListAvailable] err listingRepo.QueryAll", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	available := make([]model.ListingRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsOrder() || rec.QuantityAvailable <= 0 || rec.HasReserved(forUser) {
			continue
		}
		if district != "" && district != constant.DistrictAny && rec.District != district {
			continue
		}
		available = append(available, rec)
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].DiscountedPrice.GreaterThan(available[j].DiscountedPrice)
	})

	items := make([]model.ListingItem, 0, len(available))
	for _, rec := range available {
		items = append(items, model.ListingItem{
			ID:                rec.ID,
			RestaurantName:    rec.RestaurantName,
			FoodName:          rec.FoodName,
			Description:       rec.Description,
			Address:           rec.Address,
			District:          rec.District,
			OriginalPrice:     rec.OriginalPrice.StringFixed(2),
			DiscountedPrice:   rec.DiscountedPrice.StringFixed(2),
			QuantityAvailable: rec.QuantityAvailable,
		})
	}
	return &model.ListingListResponse{Items: items}, nil
}

func (s *listingAppImpl) ListMyOrders(ctx context.Context, forUser string) (*model.OrderListResponse, error) {
	records, err := s.listingRepo.QueryAll(ctx, "id", false)
	if err != nil {
		logger.Error("[ListMyOrders] err listingRepo.QueryAll", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	items := make([]model.OrderItem, 0)
	for _, rec := range records {
		if rec.User != forUser {
			continue
		}
		items = append(items, model.OrderItem{
			ID:              rec.ID,
			RestaurantName:  rec.RestaurantName,
			FoodName:        rec.FoodName,
			Description:     rec.Description,
			Address:         rec.Address,
			District:        rec.District,
			OriginalPrice:   rec.OriginalPrice.StringFixed(2),
			DiscountedPrice: rec.DiscountedPrice.StringFixed(2),
		})
	}
	return &model.OrderListResponse{Items: items}, nil
}

// Delete removes an open listing on behalf of the restaurant that
// created it.
func (s *listingAppImpl) Delete(ctx context.Context, listingID uint64, callerEmail string) error {
	rec, err := s.listingRepo.Get(ctx, listingID)
	if err != nil {
		logger.Error("[DeleteListing] err listingRepo.Get", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		return errors.SetCustomError(constant.ErrNotFound)
	}
	if rec.IsOrder() {
		return errors.SetCustomError(constant.ErrInvalidRequest)
	}
	if rec.Creator != callerEmail {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.SetCustomError(constant.ErrListingGone)
		}
		logger.Error("[DeleteListing] err listingRepo.Delete", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	return nil
}

// Expire removes an open listing whose pickup window lapsed. Called from
// the internal endpoint by the expiration worker.
func (s *listingAppImpl) Expire(ctx context.Context, listingID uint64) error {
	rec, err := s.listingRepo.Get(ctx, listingID)
	if err != nil {
		logger.Error("[ExpireListing] err listingRepo.Get", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil || rec.IsOrder() {
		// Already claimed out or removed; nothing to expire.
		return nil
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil
		}
		logger.Error("[ExpireListing] err listingRepo.Delete", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	logger.Info("[ExpireListing] listing expired", zap.Uint64("listing_id", listingID))
	return nil
}
