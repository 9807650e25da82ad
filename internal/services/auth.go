package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/repos"
	types "github.com/betoojeda/tienda-facil/internal/domain"
	"github.com/betoojeda/tienda-facil/internal/navigation"
	"github.com/betoojeda/tienda-facil/internal/normalization"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	pkgerrors "github.com/betoojeda/tienda-facil/internal/pkg/errors"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/apierr"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	BusinessType string `json:"business_type"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *types.User
	Landing      navigation.Landing
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, username, password string) (*LoginResult, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	RecoverPassword(ctx context.Context, identifier string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	storeRepo     repos.StoreRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	storeRepo repos.StoreRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		storeRepo:     storeRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	var created *types.User
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := createUser(dbctx.Context{Ctx: ctx, Tx: tx}, as.userRepo, in, types.RoleOwner)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

func (as *authService) LoginUser(ctx context.Context, username, password string) (*LoginResult, error) {
	username = normalization.Username(username)
	if username == "" || password == "" {
		return nil, invalid("missing_credentials", "username and password are required")
	}

	var result *LoginResult
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByUsernames(dbc, []string{username})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return notFound("user_not_found", "user does not exist")
		}
		user := users[0]
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return apierr.New(http.StatusUnauthorized, "invalid_password", fmt.Errorf("incorrect password: %w", pkgerrors.ErrUnauthorized))
		}

		var stores []*types.Store
		if user.Role != types.RoleSuperAdmin {
			stores, err = as.storeRepo.ListAccessible(dbc, user.ID, user.Username)
			if err != nil {
				return fmt.Errorf("list stores: %w", err)
			}
		}
		landing, err := navigation.AfterLogin(user, stores)
		if errors.Is(err, navigation.ErrNoStoresAssigned) {
			return apierr.New(http.StatusForbidden, "no_stores", fmt.Errorf("%w: %w", err, pkgerrors.ErrForbidden))
		}
		if err != nil {
			return err
		}

		var activeStoreID *uuid.UUID
		if landing.ActiveStore != nil {
			id := landing.ActiveStore.ID
			activeStoreID = &id
		}
		token, err := as.issueToken(dbc, user, activeStoreID)
		if err != nil {
			return err
		}
		result = &LoginResult{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			User:         user,
			Landing:      landing,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User logged in", "user_id", result.User.ID, "view", result.Landing.View)
	return result, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", invalid("missing_refresh_token", "refresh token is required")
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 {
			return apierr.New(http.StatusUnauthorized, "invalid_refresh_token", pkgerrors.ErrUnauthorized)
		}
		existing := found[0]
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("drop expired token: %w", err)
			}
			return apierr.New(http.StatusUnauthorized, "refresh_token_expired", pkgerrors.ErrUnauthorized)
		}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return apierr.New(http.StatusUnauthorized, "user_not_found", pkgerrors.ErrUnauthorized)
		}
		next, err := as.issueToken(dbc, users[0], existing.ActiveStoreID)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("drop old token: %w", err)
		}
		accessToken, newRefreshToken = next.AccessToken, next.RefreshToken
		return nil
	})
	if err != nil {
		as.log.Warn("Refresh failed", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

// LogoutUser drops the session, which also forgets its active store.
func (as *authService) LogoutUser(ctx context.Context) error {
	rd, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if err := as.userTokenRepo.SoftDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		as.log.Warn("Logout failed", "session_id", rd.SessionID, "error", err)
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RecoverPassword accepts any identifier and never reveals whether an
// account matched. No mail is sent; the request is only logged.
func (as *authService) RecoverPassword(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return invalid("missing_identifier", "username or email is required")
	}
	users, err := as.userRepo.GetByUsernames(dbctx.Context{Ctx: ctx}, []string{identifier})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	as.log.Info("Password recovery requested", "matched", len(users) > 0)
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w: %w", err, pkgerrors.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", pkgerrors.ErrUnauthorized)
	}

	dbc := dbctx.Context{Ctx: ctx}
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if len(found) == 0 || found[0].UserID != userID {
		return ctx, fmt.Errorf("session not found: %w", pkgerrors.ErrUnauthorized)
	}
	users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return ctx, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return ctx, fmt.Errorf("user not found: %w", pkgerrors.ErrUnauthorized)
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		SessionID:   found[0].ID,
		UserID:      userID,
		Role:        string(users[0].Role),
		Username:    users[0].Username,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueToken(dbc dbctx.Context, user *types.User, activeStoreID *uuid.UUID) (*types.UserToken, error) {
	now := time.Now()
	token := &types.UserToken{
		ID:            uuid.New(),
		UserID:        user.ID,
		RefreshToken:  uuid.New().String(),
		ExpiresAt:     now.Add(as.refreshTTL),
		ActiveStoreID: activeStoreID,
	}
	claims := JWTClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token.ID.String(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	token.AccessToken = signed
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{token}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// createUser validates in, hashes the password and inserts the account.
func createUser(dbc dbctx.Context, userRepo repos.UserRepo, in RegisterInput, role types.Role) (*types.User, error) {
	u := &types.User{
		Username:     normalization.Username(in.Username),
		Role:         role,
		FirstName:    normalization.Text(in.FirstName),
		LastName:     normalization.Text(in.LastName),
		Email:        normalization.ParseInputString(in.Email),
		BusinessType: types.ParseBusinessType(in.BusinessType),
	}
	switch {
	case u.Username == "":
		return nil, invalid("missing_username", "username is required")
	case strings.ContainsAny(u.Username, " \t"):
		return nil, invalid("invalid_username", "username cannot contain spaces")
	case in.Password == "":
		return nil, invalid("missing_password", "password is required")
	case u.FirstName == "":
		return nil, invalid("missing_first_name", "first name is required")
	case u.LastName == "":
		return nil, invalid("missing_last_name", "last name is required")
	case u.Email == "" || !strings.Contains(u.Email, "@"):
		return nil, invalid("invalid_email", "a valid email is required")
	}

	exists, err := userRepo.UsernameExists(dbc, u.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, conflict("username_taken", "username already exists")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	if _, err := userRepo.Create(dbc, []*types.User{u}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
