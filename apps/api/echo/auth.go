package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/admin"
)

var (
	// jwtConfig is the JWT auth middleware config; set up by the server on creation.
	jwtConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "adminToken",
		Claims:        new(Claims),
	}
	jwtConf         *core.Config
	contextAdminKey = "admin"
)

func initJWTConfig(conf *core.Config) {
	jwtConf = conf
	jwtConfig.SigningKey = []byte(conf.SecretKey)
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
}

func GetAdminClaims(adm admin.Admin, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    jwtConf.AppName,
			Subject:   adm.ID,
			Audience:  "StudyLog",
			ExpiresAt: now.Add(jwtConf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     adm.Username,
		Email:        adm.Email,
	}
}

func authenticate(ctx context.Context, uname, pwd string, svc admin.Service) (*Claims, error) {
	adm, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err == admin.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding admin by username or email")
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if adm.IsActive != nil && !*adm.IsActive {
		return nil, errAccountDeactivated
	}
	adm, err = svc.SetLastLogin(ctx, adm)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetAdminClaims(adm), nil
}

// GenerateToken generates a signed JWT token string representing the admin Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAdmin(ctx echo.Context, svc admin.Service, clms ...Claims) (admin.Admin, error) {
	if adm, ok := ctx.Get(contextAdminKey).(admin.Admin); ok {
		return adm, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return admin.Admin{}, errors.Wrap(err, "getting context claims")
		}
	}

	adm, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "finding admin by ID")
	}
	ctx.Set(contextAdminKey, adm)
	return adm, nil
}

func refreshToken(ctx echo.Context, svc admin.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	adm, err := getContextAdmin(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context admin")
	}

	// check if admin is still active
	if adm.IsActive != nil && !*adm.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(jwtConf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetAdminClaims(adm, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
