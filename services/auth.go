package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bookmarket/logger"
	"bookmarket/models"
	"bookmarket/utils"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Claims is the payload of every token: the user id and role.
type Claims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    UserStore
	secret   []byte
	hashCost int
	now      Clock
}

// NewAuthService accepts an empty secret; every operation that signs or
// verifies a token then fails with ErrNoSecret.
func NewAuthService(users UserStore, secret string, now Clock) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, secret: []byte(secret), hashCost: bcrypt.DefaultCost, now: now}
}

// WithHashCost overrides the bcrypt cost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Register creates the user and signs a token for it. When signing fails the
// user is deleted again.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.Role == "" {
		return nil, "", validationf("all fields are required")
	}
	if in.Role == models.RoleAdmin {
		return nil, "", ErrAdminSignup
	}
	if !in.Role.Valid() {
		return nil, "", validationf("role must be BOOKSEEKER or BOOKSELLER")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	u := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.IssueToken(u)
	if err != nil {
		if delErr := s.users.DeleteUser(ctx, u.ID); delErr != nil {
			logger.FromCtx(ctx).Error("rollback of user failed",
				zap.String("user_id", u.ID.Hex()), zap.Error(delErr))
		}
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", validationf("email and password are required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", wrap(ErrNotFound, "no account found, please register first")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Me(ctx context.Context, userHex string) (*models.User, error) {
	return s.findUser(ctx, userHex)
}

// GetAddress returns the stored address, nil when the user never set one.
func (s *AuthService) GetAddress(ctx context.Context, userHex string) (*models.Address, error) {
	u, err := s.findUser(ctx, userHex)
	if err != nil {
		return nil, err
	}
	return u.Address, nil
}

func (s *AuthService) UpdateAddress(ctx context.Context, userHex string, addr *models.Address) (*models.Address, error) {
	id, err := ParseID(userHex)
	if err != nil {
		return nil, err
	}
	if addr == nil || addr.IsZero() {
		return nil, validationf("address required")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := s.users.SetUserAddress(ctx, id, *addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u.Address, nil
}

// IssueToken signs an HS256 token carrying the user id and role.
func (s *AuthService) IssueToken(u *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := Claims{
		UserID: u.ID.Hex(),
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a token.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, wrap(ErrUnauthorized, "invalid token")
	}
	if claims.UserID == "" {
		return nil, wrap(ErrUnauthorized, "user id missing in token")
	}
	return claims, nil
}

func (s *AuthService) findUser(ctx context.Context, userHex string) (*models.User, error) {
	id, err := ParseID(userHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
