package reservation

import (
	"context"
	"database/sql"
	goerrors "errors"

	"github.com/foodforall/marketplace/cmd/config"
	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/model"
	listingrepo "github.com/foodforall/marketplace/repository/listing"
	txrepo "github.com/foodforall/marketplace/repository/tx"
	"github.com/foodforall/marketplace/utils/errors"
	"github.com/foodforall/marketplace/utils/logger"
	"go.uber.org/zap"
)

// ReservationApp is the listing-reservation workflow. Reserve claims one
// unit of an open listing for a user; Cancel reverses the claim.
//
// The default mode reproduces the source behavior: two bare sequential
// store calls with no transaction and no rollback, so a failure between
// the steps leaves the partial state in place. With conditional writes
// enabled both steps run in one transaction and the listing update is
// guarded by its version token; a lost race surfaces as ErrListingGone
// instead of a silent double-claim.
type ReservationApp interface {
	Reserve(ctx context.Context, listingID uint64, userEmail string) (*model.ReserveResponse, error)
	Cancel(ctx context.Context, orderID uint64, callerEmail string) error
}

type reservationAppImpl struct {
	config      *config.Config
	txRepo      txrepo.TxRepository
	listingRepo listingrepo.ListingRepository
}

func NewReservationApp(config *config.Config, txRepo txrepo.TxRepository, listingRepo listingrepo.ListingRepository) ReservationApp {
	return &reservationAppImpl{config: config, txRepo: txRepo, listingRepo: listingRepo}
}

func (s *reservationAppImpl) Reserve(ctx context.Context, listingID uint64, userEmail string) (*model.ReserveResponse, error) {
	rec, err := s.listingRepo.Get(ctx, listingID)
	if err != nil {
		logger.Error("[Reserve] err listingRepo.Get", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		return nil, errors.SetCustomError(constant.ErrListingGone)
	}
	if rec.IsOrder() {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}
	if rec.QuantityAvailable <= 0 {
		return nil, errors.SetCustomError(constant.ErrListingUnavailable)
	}
	if rec.HasReserved(userEmail) {
		return nil, errors.SetCustomError(constant.ErrAlreadyReserved)
	}

	order := buildOrder(rec, userEmail)

	if s.config.Reservation.ConditionalWrites {
		return s.reserveGuarded(ctx, rec, userEmail, order)
	}

	// Step 1: take one unit off the open listing. The last unit removes
	// the record entirely.
	if rec.QuantityAvailable > 1 {
		newQty := rec.QuantityAvailable - 1
		newReserved := append(append([]string{}, rec.Reserved...), userEmail)
		patch := &model.ListingPatch{QuantityAvailable: &newQty, Reserved: &newReserved}
		if err := s.listingRepo.Update(ctx, rec.ID, patch); err != nil {
			if goerrors.Is(err, sql.ErrNoRows) {
				return nil, errors.SetCustomError(constant.ErrListingGone)
			}
			logger.Error("[Reserve] err listingRepo.Update", zap.String("error", err.Error()))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
	} else {
		if err := s.listingRepo.Delete(ctx, rec.ID); err != nil {
			if goerrors.Is(err, sql.ErrNoRows) {
				return nil, errors.SetCustomError(constant.ErrListingGone)
			}
			logger.Error("[Reserve] err listingRepo.Delete", zap.String("error", err.Error()))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
	}

	// Step 2: materialize the order. A failure here leaves step 1
	// applied; there is no compensating write.
	orderID, err := s.listingRepo.Create(ctx, order)
	if err != nil {
		logger.Error("[Reserve] err listingRepo.Create order", zap.Uint64("listing_id", rec.ID), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	return &model.ReserveResponse{OrderID: orderID}, nil
}

func (s *reservationAppImpl) reserveGuarded(ctx context.Context, rec *model.ListingRecord, userEmail string, order *model.ListingRecord) (*model.ReserveResponse, error) {
	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[Reserve] begin tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	if rec.QuantityAvailable > 1 {
		newQty := rec.QuantityAvailable - 1
		newReserved := append(append([]string{}, rec.Reserved...), userEmail)
		patch := &model.ListingPatch{QuantityAvailable: &newQty, Reserved: &newReserved}
		err = s.listingRepo.UpdateGuardedTx(ctx, tx, rec.ID, rec.Version, patch)
	} else {
		err = s.listingRepo.DeleteGuardedTx(ctx, tx, rec.ID, rec.Version)
	}
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.SetCustomError(constant.ErrListingGone)
		}
		logger.Error("[Reserve] guarded write", zap.Uint64("listing_id", rec.ID), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	orderID, err := s.listingRepo.CreateTx(ctx, tx, order)
	if err != nil {
		logger.Error("[Reserve] err listingRepo.CreateTx order", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[Reserve] commit tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	committed = true

	return &model.ReserveResponse{OrderID: orderID}, nil
}

func (s *reservationAppImpl) Cancel(ctx context.Context, orderID uint64, callerEmail string) error {
	rec, err := s.listingRepo.Get(ctx, orderID)
	if err != nil {
		logger.Error("[Cancel] err listingRepo.Get", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		return errors.SetCustomError(constant.ErrNotFound)
	}
	if !rec.IsOrder() {
		return errors.SetCustomError(constant.ErrInvalidRequest)
	}
	if rec.User != callerEmail {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}

	// Step 1: drop the order record.
	if err := s.listingRepo.Delete(ctx, rec.ID); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.SetCustomError(constant.ErrNotFound)
		}
		logger.Error("[Cancel] err listingRepo.Delete", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	// Step 2: return the unit to the catalog. The matching open listing
	// gets its quantity back; if none survives, the listing is recreated
	// from the order's descriptive fields. The recreated record starts
	// with an empty reserved set and no creator, since the order never
	// carried either.
	records, err := s.listingRepo.QueryAll(ctx, "id", false)
	if err != nil {
		logger.Error("[Cancel] err listingRepo.QueryAll", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	open := findOpenListing(records, rec.RestaurantName, rec.FoodName)
	if open == nil {
		recreated := buildOpenListing(rec)
		if _, err := s.listingRepo.Create(ctx, recreated); err != nil {
			logger.Error("[Cancel] err listingRepo.Create recreate", zap.String("error", err.Error()))
			return errors.SetCustomError(constant.ErrInternal)
		}
		return nil
	}

	newQty := open.QuantityAvailable + 1
	patch := &model.ListingPatch{QuantityAvailable: &newQty}
	if err := s.listingRepo.Update(ctx, open.ID, patch); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.SetCustomError(constant.ErrListingGone)
		}
		logger.Error("[Cancel] err listingRepo.Update", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	return nil
}

// buildOrder copies the listing's descriptive fields into a one-unit
// order record owned by the claiming user.
func buildOrder(listing *model.ListingRecord, userEmail string) *model.ListingRecord {
	return &model.ListingRecord{
		RestaurantName:    listing.RestaurantName,
		FoodName:          listing.FoodName,
		Description:       listing.Description,
		Address:           listing.Address,
		District:          listing.District,
		OriginalPrice:     listing.OriginalPrice,
		DiscountedPrice:   listing.DiscountedPrice,
		QuantityAvailable: 1,
		Reserved:          []string{},
		User:              userEmail,
	}
}

// buildOpenListing reconstructs an open listing from a canceled order.
func buildOpenListing(order *model.ListingRecord) *model.ListingRecord {
	return &model.ListingRecord{
		RestaurantName:    order.RestaurantName,
		FoodName:          order.FoodName,
		Description:       order.Description,
		Address:           order.Address,
		District:          order.District,
		OriginalPrice:     order.OriginalPrice,
		DiscountedPrice:   order.DiscountedPrice,
		QuantityAvailable: 1,
		Reserved:          []string{},
	}
}

func findOpenListing(records []model.ListingRecord, restaurantName, foodName string) *model.ListingRecord {
	for i := range records {
		r := &records[i]
		if r.IsOrder() {
			continue
		}
		if r.RestaurantName == restaurantName && r.FoodName == foodName {
			return r
		}
	}
	return nil
}
