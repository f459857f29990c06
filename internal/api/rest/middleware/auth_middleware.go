package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/Dhoini/course-marketplace/pkg/res"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	callerKey        = "caller"
	authHeaderPrefix = "Bearer "
)

// TokenValidator проверяет токен сессии
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims поля JWT, из которых строится domain.Caller
type TokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Caller переводит claims в пользователя запроса
func (c *TokenClaims) Caller() domain.Caller {
	return domain.Caller{
		ID:    c.Subject,
		Role:  domain.Role(c.Role),
		Email: c.Email,
	}
}

// Authenticate определяет пользователя по заголовку Authorization.
// Запрос без токена проходит без пользователя, решение о доступе принимает сервис.
// Невалидный токен отклоняется с 401.
func Authenticate(validator TokenValidator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, authHeaderPrefix)
		if !ok || tokenString == "" {
			rejectToken(c, log, "malformed authorization header")
			return
		}

		claims, err := validator.Validate(tokenString)
		if err != nil {
			rejectToken(c, log, err.Error())
			return
		}
		if claims.Subject == "" {
			rejectToken(c, log, "user ID (sub) missing in token")
			return
		}

		caller := claims.Caller()
		c.Set(callerKey, caller)
		log.Debugw("User authenticated", "userID", caller.ID, "role", caller.Role)
		c.Next()
	}
}

func rejectToken(c *gin.Context, log *logger.Logger, reason string) {
	log.Warnw("HTTP authentication failed", "path", c.Request.URL.Path, "reason", reason)
	res.Error(c, domain.Unauthenticated("Unauthenticated"), log)
}

// CallerFrom возвращает пользователя запроса; нулевое значение, если сессии нет
func CallerFrom(c *gin.Context) domain.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(domain.Caller); ok {
			return caller
		}
	}
	return domain.Caller{}
}

// HMACTokenValidator проверяет HS256-токены общим секретом
type HMACTokenValidator struct {
	secret []byte
	issuer string
}

// NewHMACTokenValidator создает валидатор; пустой issuer не проверяется
func NewHMACTokenValidator(secret, issuer string) *HMACTokenValidator {
	return &HMACTokenValidator{secret: []byte(secret), issuer: issuer}
}

func (v *HMACTokenValidator) Validate(tokenString string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.New("malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.New("invalid token signature")
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errors.New("token expired")
		default:
			return nil, fmt.Errorf("invalid token: %w", err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}
