package devapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/pkg"
)

const (
	msgInvalidCredentials = "Usuário ou senha inválidos."
	msgMissingToken       = "Token de acesso ausente."
	msgInvalidToken       = "Token de acesso inválido ou expirado."
)

// tokenIssuerName is the iss claim of every token this backend signs.
const tokenIssuerName = "partsweb-devapi"

// ErrInvalidToken is returned for tokens that fail signature, algorithm,
// issuer or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies HS256 tokens through a jwt.Service.
type TokenIssuer struct {
	svc jwt.Service
	ttl time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given secret and token
// lifetime. The secret must be at least jwt.MinSecretLength bytes.
func NewTokenIssuer(secret string, ttl time.Duration, opts ...jwt.Option) (*TokenIssuer, error) {
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	base := []jwt.Option{
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithMaxTokenLifetime(ttl),
		jwt.WithUserRevocationTTL(max(ttl, jwt.DefaultUserRevocationTTL)),
	}
	svc, err := jwt.New(secret, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{svc: svc, ttl: ttl}, nil
}

// Issue returns a signed token for the user and its expiry time. The
// username travels as the token's only role.
func (t *TokenIssuer) Issue(user *User) (string, time.Time, error) {
	signed, err := t.svc.GenerateToken(user.ID, []string{user.Username}, t.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	parsed, err := t.svc.ParseToken(signed)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, parsed.ExpiresAt, nil
}

// Parse verifies token and returns it decoded.
func (t *TokenIssuer) Parse(token string) (*jwt.Token, error) {
	parsed, err := t.svc.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return parsed, nil
}

// Close stops the revocation cleanup of the underlying service.
func (t *TokenIssuer) Close() {
	t.svc.Close()
}

// AuthService checks credentials against stored bcrypt hashes.
type AuthService struct {
	store  *Store
	tokens *TokenIssuer
}

// NewAuthService creates an AuthService.
func NewAuthService(store *Store, tokens *TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Login authenticates a user by username and password and returns a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*loginResponse, error) {
	user, err := s.store.FindUser(ctx, username)
	if err != nil {
		// Don't reveal whether the user exists.
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeUnauthorized, msgInvalidCredentials, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.NewAppError(domain.CodeUnauthorized, msgInvalidCredentials, nil)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to sign token", err)
	}
	return &loginResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

// Register creates a user with a bcrypt hash of password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "username is required", nil)
	}
	if len(password) > 72 {
		return nil, domain.NewAppError(domain.CodeValidation, "password must not exceed 72 bytes", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	user := &User{Username: username, PasswordHash: string(hash)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	svc    *AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if domain.IsUnauthorized(err) {
			h.logger.InfoContext(c.Request.Context(), "login rejected", slog.String("username", req.Username))
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RequireToken rejects requests without a valid bearer token when enabled.
// Failures are answered in the API error shape.
func RequireToken(tokens *TokenIssuer, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return ginx.NewChain().
		WithErrorFormat(tokenErrorBody).
		Use(ginx.Auth(tokens.svc)).
		Build()
}

// CurrentUsername returns the username carried by the request's token.
func CurrentUsername(c *gin.Context) string {
	roles, ok := ginx.GetUserRoles(c)
	if !ok || len(roles) == 0 {
		return ""
	}
	return roles[0]
}

func tokenErrorBody(_ int, message string) any {
	if message == "missing token" {
		return pkg.ErrorBody{Message: msgMissingToken}
	}
	return pkg.ErrorBody{Message: msgInvalidToken}
}
