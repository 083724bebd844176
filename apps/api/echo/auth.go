package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/core/session"
)

const tokenContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// The token id is the login session it was issued for.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
}

type authenticator struct {
	conf   middleware.JWTConfig
	issuer string
	expiry time.Duration
	ctrl   *session.Controller
}

func newAuthenticator(conf *core.Config, ctrl *session.Controller) *authenticator {
	return &authenticator{
		conf: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    tokenContextKey,
			Claims:        new(Claims),
		},
		issuer: conf.AppName,
		expiry: conf.Server.JWTExpirationDelta,
		ctrl:   ctrl,
	}
}

func (a *authenticator) claims(usr document.User, sessionID string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Issuer:    a.issuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(a.expiry).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
	}
}

// generateToken generates a signed JWT token string bound to the current login session.
func (a *authenticator) generateToken(usr document.User, sessionID string) (string, error) {
	method := jwt.GetSigningMethod(a.conf.SigningMethod)
	token := jwt.NewWithClaims(method, a.claims(usr, sessionID))

	ss, err := token.SignedString(a.conf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// middleware checks the bearer token, then that it was issued for the session still logged in.
func (a *authenticator) middleware() echo.MiddlewareFunc {
	jwtMiddleware := middleware.JWTWithConfig(a.conf)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr, ok := a.ctrl.CurrentUser()
			if !ok || claims.Id == "" || claims.Id != a.ctrl.SessionID() || claims.Subject != usr.ID {
				return errSessionEnded
			}
			return next(ctx)
		})
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
