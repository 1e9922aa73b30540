package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/requestdata"
	"github.com/heridalab/woundcare-backend/internal/tokenstore"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type AuthService interface {
	Login(ctx context.Context, rut, contrasena string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*requestdata.RequestData, error)
}

type authService struct {
	userRepo repos.UserRepo
	revoked  tokenstore.RevokedStore
	secret   []byte
	tokenTTL time.Duration
	log      *logger.Logger
}

func NewAuthService(userRepo repos.UserRepo, revoked tokenstore.RevokedStore, secret []byte, tokenTTL time.Duration, baseLog *logger.Logger) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		userRepo: userRepo,
		revoked:  revoked,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      serviceLog,
	}
}

func (as *authService) Login(ctx context.Context, rut, contrasena string) (string, error) {
	rut = utils.NormalizeRUT(rut)
	if rut == "" || contrasena == "" {
		return "", fmt.Errorf("rut y contrasena son requeridos: %w", apperr.ErrValidation)
	}

	user, err := as.userRepo.GetByRut(ctx, nil, rut)
	if err != nil {
		return "", fmt.Errorf("Failed to fetch user: %w", err)
	}
	if user == nil || !utils.CheckPassword(user.ContrasenaHash, contrasena) {
		// Same answer for unknown rut and bad password.
		return "", fmt.Errorf("credenciales invalidas: %w", apperr.ErrUnauthorized)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.Rut,
		"rol": user.Rol,
		"iat": now.Unix(),
		"exp": now.Add(as.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %w", err)
	}

	as.log.Info("User logged in", "rut", user.Rut, "rol", user.Rol)
	return token, nil
}

func (as *authService) Logout(ctx context.Context, token string) error {
	claims, err := as.parse(token)
	if err != nil {
		return err
	}
	ttl := as.tokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := as.revoked.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("Failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate verifies signature, expiry and revocation, and returns the
// caller identity embedded in the token.
func (as *authService) Authenticate(ctx context.Context, token string) (*requestdata.RequestData, error) {
	claims, err := as.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := as.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("Failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token revocado: %w", apperr.ErrUnauthorized)
	}

	rut, _ := claims["sub"].(string)
	rol, _ := claims["rol"].(string)
	if rut == "" {
		return nil, fmt.Errorf("token sin subject: %w", apperr.ErrUnauthorized)
	}
	return &requestdata.RequestData{TokenString: token, Rut: rut, Rol: rol}, nil
}

func (as *authService) parse(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("token invalido: %w", apperr.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("token invalido: %w", apperr.ErrUnauthorized)
	}
	return claims, nil
}
