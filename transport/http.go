package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	accountapp "github.com/foodforall/marketplace/application/account"
	listingapp "github.com/foodforall/marketplace/application/listing"
	reservationapp "github.com/foodforall/marketplace/application/reservation"
	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/model"
	utilsContext "github.com/foodforall/marketplace/utils/context"
	"github.com/foodforall/marketplace/utils/errors"
	validatorx "github.com/foodforall/marketplace/utils/validator"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RestHandler struct {
	AccountApp     accountapp.AccountApp
	ListingApp     listingapp.ListingApp
	ReservationApp reservationapp.ReservationApp
}

func NewTransport(accountApp accountapp.AccountApp, listingApp listingapp.ListingApp, reservationApp reservationapp.ReservationApp, internalAPIKey string) http.Handler {
	mux := mux.NewRouter()

	rh := &RestHandler{
		AccountApp:     accountApp,
		ListingApp:     listingApp,
		ReservationApp: reservationApp,
	}

	// Swagger UI
	mux.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Public routes
	mux.HandleFunc("/accounts/restaurant", rh.RegisterRestaurant).Methods(http.MethodPost)
	mux.HandleFunc("/accounts/user", rh.RegisterUser).Methods(http.MethodPost)
	mux.HandleFunc("/sessions", rh.CreateSession).Methods(http.MethodPost)

	// Protected routes
	mux.HandleFunc("/listings", rh.CreateListing).Methods(http.MethodPost)
	mux.HandleFunc("/listings", rh.ListListings).Methods(http.MethodGet)
	mux.HandleFunc("/listings/{id}", rh.DeleteListing).Methods(http.MethodDelete)
	mux.HandleFunc("/listings/{id}/reserve", rh.ReserveListing).Methods(http.MethodPost)
	mux.HandleFunc("/orders", rh.ListOrders).Methods(http.MethodGet)
	mux.HandleFunc("/orders/{id}/cancel", rh.CancelOrder).Methods(http.MethodPost)

	// Internal routes (expiration worker callback)
	internal := mux.PathPrefix("/internal").Subrouter()
	internal.Use(InternalMiddleware(internalAPIKey))
	internal.HandleFunc("/listings/{id}/expire", rh.ExpireListing).Methods(http.MethodPost)

	// middleware
	mux.Use(LoggingMiddleware())
	mux.Use(AuthMiddleware(accountApp))

	return mux
}

// RegisterRestaurant handler
// @Summary Register restaurant account
// @Description Register a restaurant with profile and opening hours
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body model.RegisterRestaurantRequest true "Register Request"
// @Success 200 {object} model.RegisterResponse
// @Failure 400 {object} errors.CustomError
// @Router /accounts/restaurant [post]
func (s *RestHandler) RegisterRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.RegisterRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.AccountApp.RegisterRestaurant(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// RegisterUser handler
// @Summary Register user account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body model.RegisterUserRequest true "Register Request"
// @Success 200 {object} model.RegisterResponse
// @Failure 400 {object} errors.CustomError
// @Router /accounts/user [post]
func (s *RestHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.AccountApp.RegisterUser(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// CreateSession handler
// @Summary Login
// @Description Login with email or phone and receive JWT token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login Request"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} errors.CustomError
// @Router /sessions [post]
func (s *RestHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.AccountApp.Login(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// CreateListing handler
// @Summary Create an open listing
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateListingRequest true "Listing"
// @Success 200 {object} model.CreateListingResponse
// @Failure 400 {object} errors.CustomError
// @Router /listings [post]
func (s *RestHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	var req model.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.ListingApp.Create(ctx, identity, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// ListListings handler
// @Summary List available listings
// @Description Open listings the caller can still reserve, discounted price descending
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Param district query string false "District filter, 'Any' disables it"
// @Success 200 {object} model.ListingListResponse
// @Router /listings [get]
func (s *RestHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	district := r.URL.Query().Get("district")

	res, err := s.ListingApp.ListAvailable(ctx, email, district)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// DeleteListing handler
// @Summary Delete an open listing
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200 {string} string "ok"
// @Failure 400 {object} errors.CustomError
// @Router /listings/{id} [delete]
func (s *RestHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ListingApp.Delete(ctx, id, email); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// ReserveListing handler
// @Summary Reserve one unit of a listing
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200 {object} model.ReserveResponse
// @Failure 409 {object} errors.CustomError
// @Router /listings/{id}/reserve [post]
func (s *RestHandler) ReserveListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.ReservationApp.Reserve(ctx, id, email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// ListOrders handler
// @Summary List the caller's orders
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.OrderListResponse
// @Router /orders [get]
func (s *RestHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	res, err := s.ListingApp.ListMyOrders(ctx, email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// CancelOrder handler
// @Summary Cancel an order
// @Description Deletes the order and returns the unit to the catalog
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {string} string "ok"
// @Failure 400 {object} errors.CustomError
// @Router /orders/{id}/cancel [post]
func (s *RestHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ReservationApp.Cancel(ctx, id, email); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// ExpireListing handler for the expiration worker callback.
func (s *RestHandler) ExpireListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ListingApp.Expire(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

func pathID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func identityFromContext(ctx context.Context) (*model.TokenIdentity, bool) {
	id, ok := utilsContext.GetAccountID(ctx)
	if !ok {
		return nil, false
	}
	email, ok := utilsContext.GetAccountEmail(ctx)
	if !ok {
		return nil, false
	}
	role, ok := utilsContext.GetAccountRole(ctx)
	if !ok {
		return nil, false
	}
	return &model.TokenIdentity{AccountID: id, Email: email, Role: role}, true
}
