package account

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/foodforall/marketplace/cmd/config"
	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/model"
	accountrepo "github.com/foodforall/marketplace/repository/account"
	redisrepo "github.com/foodforall/marketplace/repository/redis"
	"github.com/foodforall/marketplace/utils/errors"
	"github.com/foodforall/marketplace/utils/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AccountApp interface {
	RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterResponse, error)
	RegisterRestaurant(ctx context.Context, req *model.RegisterRestaurantRequest) (*model.RegisterResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*model.TokenIdentity, error)
}

type AccountAppImpl struct {
	config      *config.Config
	accountRepo accountrepo.AccountRepository
	redisRepo   redisrepo.Repository
}

func NewAccountApp(config *config.Config, accountRepo accountrepo.AccountRepository, redisRepo redisrepo.Repository) AccountApp {
	return &AccountAppImpl{
		config:      config,
		accountRepo: accountRepo,
		redisRepo:   redisRepo,
	}
}

func (s *AccountAppImpl) RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterResponse, error) {
	entity := &model.AccountEntity{
		Role:  constant.RoleUser,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	return s.register(ctx, entity, req.Password)
}

func (s *AccountAppImpl) RegisterRestaurant(ctx context.Context, req *model.RegisterRestaurantRequest) (*model.RegisterResponse, error) {
	// Opening hours are validated before any store call.
	if !validTimeRange(req.OpeningTime, req.ClosingTime) {
		return nil, errors.SetCustomError(constant.ErrInvalidTimeRange)
	}

	entity := &model.AccountEntity{
		Role:        constant.RoleRestaurant,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		District:    req.District,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	}
	return s.register(ctx, entity, req.Password)
}

func (s *AccountAppImpl) register(ctx context.Context, entity *model.AccountEntity, password string) (*model.RegisterResponse, error) {
	// Check if account exists by email or phone
	existing, err := s.accountRepo.Get(ctx, &model.AccountFilter{Email: entity.Email})
	if err != nil {
		logger.Error("[Register] err accountRepo.Get email", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if existing != nil {
		return nil, errors.SetCustomError(constant.ErrCredentialExists)
	}

	existing, err = s.accountRepo.Get(ctx, &model.AccountFilter{Phone: entity.Phone})
	if err != nil {
		logger.Error("[Register] err accountRepo.Get phone", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if existing != nil {
		return nil, errors.SetCustomError(constant.ErrCredentialExists)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("[Register] err bcrypt.GenerateFromPassword", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	entity.PasswordHash = string(hashedPassword)

	// Save to database
	entity, err = s.accountRepo.Create(ctx, entity)
	if err != nil {
		logger.Error("[Register] err accountRepo.Create", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	return &model.RegisterResponse{
		Name:  entity.Name,
		Email: entity.Email,
	}, nil
}

func (s *AccountAppImpl) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	// Find account by email or phone
	filter := &model.AccountFilter{}
	if isEmail(req.Identifier) {
		filter.Email = req.Identifier
	} else {
		filter.Phone = req.Identifier
	}

	acc, err := s.accountRepo.Get(ctx, filter)
	if err != nil {
		logger.Error("[Login] err accountRepo.Get", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if acc == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	// Verify password
	err = bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, errors.SetCustomError(constant.ErrInvalidPassword)
	}

	// Generate JWT token
	token, jti, err := s.generateJWT(acc.ID)
	if err != nil {
		logger.Error("[Login] err generateJWT", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	// Store session in Redis
	err = s.redisRepo.SetSession(ctx, jti, acc.ID, s.config.Auth.SessionExpTime)
	if err != nil {
		logger.Error("[Login] err SetSession", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	return &model.LoginResponse{
		Name:  acc.Name,
		Email: acc.Email,
		Role:  acc.Role,
		Token: token,
	}, nil
}

func (s *AccountAppImpl) ValidateToken(ctx context.Context, tokenString string) (*model.TokenIdentity, error) {
	// Parse token
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	// Extract claims
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}

	// Extract accountID from Subject
	accountID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid account id in token")
	}

	// Extract JTI (Token ID)
	jti := claims.ID
	if jti == "" {
		return nil, fmt.Errorf("token missing jti")
	}

	// Check Redis session key
	redisAccountID, err := s.redisRepo.GetSession(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired session")
	}
	if redisAccountID != accountID {
		return nil, fmt.Errorf("token does not match account session")
	}

	// Resolve the acting identity; reserved sets and record ownership use
	// the account email.
	acc, err := s.accountRepo.Get(ctx, &model.AccountFilter{ID: accountID})
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if acc == nil {
		return nil, fmt.Errorf("account no longer exists")
	}

	return &model.TokenIdentity{
		AccountID: acc.ID,
		Email:     acc.Email,
		Role:      acc.Role,
	}, nil
}

// generateJWT creates a JWT token for the account
func (s *AccountAppImpl) generateJWT(accountID uint64) (string, string, error) {
	newUUID, _ := uuid.NewRandom()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", accountID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.Auth.JWTExpiration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        newUUID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims.ID, nil
}

// validTimeRange checks that opening time falls strictly before closing
// time, both in 24h "HH:MM".
func validTimeRange(opening, closing string) bool {
	openT, err := time.Parse("15:04", opening)
	if err != nil {
		return false
	}
	closeT, err := time.Parse("15:04", closing)
	if err != nil {
		return false
	}
	return openT.Before(closeT)
}

// isEmail checks if identifier looks like an email
func isEmail(identifier string) bool {
	for _, r := range identifier {
		if r == '@' {
			return true
		}
	}
	return false
}
