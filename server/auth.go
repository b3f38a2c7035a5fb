package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rabithua/memoask/api"
	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/store"
)

const (
	sessionCookieName = "memoask.session"
	sessionDuration   = 7 * 24 * time.Hour
	sessionIssuer     = "memoask"
	userIDContextKey  = "user-id"
)

func (s *Server) generateToken(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Profile.Secret))
}

// parseToken returns the user id of a valid session token.
func (s *Server) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.Profile.Secret), nil
	})
	if err != nil {
		return "", err
	}
	if !claims.VerifyIssuer(sessionIssuer, true) || claims.Subject == "" {
		return "", fmt.Errorf("invalid session claims")
	}
	return claims.Subject, nil
}

func (s *Server) setSession(c echo.Context, userID string) error {
	now := time.Now()
	token, err := s.generateToken(userID, now)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign in.").SetInternal(err)
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(sessionDuration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.Profile.IsDev(),
	})
	return nil
}

func clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// sessionMiddleware resolves the signed-in user. Requests without a valid
// session continue anonymously.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookieName)
		if err == nil && cookie.Value != "" {
			userID, err := s.parseToken(cookie.Value)
			if err != nil {
				s.logger.Debug("ignoring invalid session", zap.Error(err))
			} else {
				c.Set(userIDContextKey, userID)
			}
		}
		return next(c)
	}
}

func getCurrentUserID(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}

// requireSignIn redirects anonymous requests to target.
func requireSignIn(target string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if getCurrentUserID(c) == "" {
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

func (s *Server) registerAuthRoutes(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		if userID := getCurrentUserID(c); userID != "" {
			return c.Redirect(http.StatusFound, "/users/"+userID)
		}
		return c.Redirect(http.StatusFound, "/login")
	})

	e.GET("/register", func(c echo.Context) error {
		return c.Render(http.StatusOK, "register.html", authPage{page: page{Title: "Register", CurrentUserID: getCurrentUserID(c)}})
	})

	e.POST("/register", func(c echo.Context) error {
		ctx := c.Request().Context()
		signup := &api.SignUp{}
		if err := c.Bind(signup); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed signup request.").SetInternal(err)
		}
		if signup.Username == "" || signup.Password == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required.")
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate password hash.").SetInternal(err)
		}
		user, err := s.Store.CreateUser(ctx, &store.User{
			Username:     signup.Username,
			PasswordHash: string(passwordHash),
		})
		if err != nil {
			if common.ErrorCode(err) == common.Conflict {
				return echo.NewHTTPError(http.StatusConflict, "This username is already taken.")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user.").SetInternal(err)
		}
		s.logger.Info("user registered", zap.String("user_id", user.ID))

		if err := s.setSession(c, user.ID); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/users/"+user.ID)
	})

	e.GET("/login", func(c echo.Context) error {
		return c.Render(http.StatusOK, "login.html", authPage{page: page{Title: "Login", CurrentUserID: getCurrentUserID(c)}})
	})

	e.POST("/login", func(c echo.Context) error {
		ctx := c.Request().Context()
		signin := &api.SignIn{}
		if err := c.Bind(signin); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed signin request.").SetInternal(err)
		}

		user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &signin.Username})
		if err != nil && common.ErrorCode(err) != common.NotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to find user.").SetInternal(err)
		}
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(signin.Password)) != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Incorrect username or password.")
		}

		if err := s.setSession(c, user.ID); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/users/"+user.ID)
	})

	e.GET("/logout", func(c echo.Context) error {
		clearSession(c)
		return c.Redirect(http.StatusFound, "/login")
	})
}
