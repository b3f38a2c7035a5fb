package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rabithua/memoask/plugin/llm"
	"github.com/rabithua/memoask/plugin/markdown"
	"github.com/rabithua/memoask/plugin/rag"
	"github.com/rabithua/memoask/plugin/tagger"
	"github.com/rabithua/memoask/server/profile"
	"github.com/rabithua/memoask/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	logger    *zap.Logger
	renderer  *markdown.Renderer
	retriever *rag.Retriever
	answerer  *rag.Answerer
	redactor  *rag.Redactor
	tagger    *tagger.Generator
	trusted   []*net.IPNet
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, reasoner llm.Reasoner, logger *zap.Logger) (*Server, error) {
	if profile.Secret == "" {
		return nil, fmt.Errorf("session secret must not be empty")
	}
	if reasoner == nil {
		return nil, fmt.Errorf("reasoner cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	trusted, err := parseTrustedNetworks(profile.TrustedNetworks)
	if err != nil {
		return nil, err
	}
	templates, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = templates
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	cfg := rag.Config{
		Model:        profile.LLM.Model,
		SuperAdminID: profile.SuperAdminID,
		SecretMarker: profile.SecretMarker,
	}
	s := &Server{
		e:         e,
		Profile:   profile,
		Store:     store,
		logger:    logger,
		renderer:  markdown.NewRenderer(markdown.DefaultPolicy()),
		retriever: rag.NewRetriever(reasoner, store, cfg, logger.Named("rag")),
		answerer:  rag.NewAnswerer(reasoner, cfg, logger.Named("rag")),
		redactor:  rag.NewRedactor(profile.SecretMarker),
		tagger:    tagger.NewGenerator(reasoner, profile.LLM.Model, logger.Named("tagger")),
		trusted:   trusted,
	}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(s.sessionMiddleware)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.registerAuthRoutes(e)
	s.registerUserRoutes(e)
	s.registerMemoRoutes(e)
	s.registerTagRoutes(e)
	s.registerSearchRoutes(e)
	s.registerRSSRoutes(e)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("starting http server", zap.String("addr", addr), zap.String("mode", s.Profile.Mode))
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.e.Shutdown(ctx)
}

// ServeHTTP lets the server be driven directly, as in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// errorHandler writes errors as plain text. Internal causes are logged and
// never shown.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
		if he.Internal != nil {
			s.logger.Warn("request failed", zap.Int("status", code), zap.Error(he.Internal))
		}
	} else {
		s.logger.Error("unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.String(code, message)
	}
	if err != nil {
		s.logger.Error("failed to write error response", zap.Error(err))
	}
}

func parseTrustedNetworks(cidrs []string) ([]*net.IPNet, error) {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted network %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func (s *Server) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range s.trusted {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}
