package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rabithua/memoask/api"
	"github.com/rabithua/memoask/plugin/rag"
)

const (
	// searchRequestsPerMinute is the per-client budget of answered searches.
	searchRequestsPerMinute = 5

	noResultAnswer    = "No related memos were found."
	unavailableAnswer = "The assistant could not answer right now. Please try again later."
)

func (s *Server) searchRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return s.isTrusted(c.RealIP())
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(searchRequestsPerMinute) / 60),
			Burst:     searchRequestsPerMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Info("search rate limit exceeded", zap.String("ip", identifier))
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please wait a minute.")
		},
	})
}

func (s *Server) registerSearchRoutes(e *echo.Echo) {
	e.GET("/memo/search", func(c echo.Context) error {
		return c.Render(http.StatusOK, "search.html", searchPage{
			page:        page{Title: "Ask", CurrentUserID: getCurrentUserID(c)},
			Query:       c.QueryParam("q"),
			OtherUserID: c.QueryParam("user_id"),
		})
	}, requireSignIn("/"))

	// The signed-in check runs first so anonymous requests do not spend the
	// rate limit budget.
	e.POST("/memo/search", s.search, requireSignIn("/"), s.searchRateLimiter())
}

func (s *Server) search(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getCurrentUserID(c)

	request := &api.SearchRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed search request.").SetInternal(err)
	}
	if request.Query == "" {
		request.Query = c.QueryParam("q")
	}
	if request.UserID == "" {
		request.UserID = c.QueryParam("user_id")
	}
	request.UserID = strings.TrimSpace(request.UserID)

	result := s.retriever.Retrieve(ctx, request.Query, currentUserID, request.UserID)
	s.logger.Info("rag result", zap.String("kind", result.Kind.String()), zap.Int("memos", len(result.Memos)))

	answer := noResultAnswer
	switch result.Kind {
	case rag.KindAuthor:
		answer = "User ID: " + result.Author.UserID
	case rag.KindMemos:
		generated, err := s.answerer.Answer(ctx, request.Query, result.Memos)
		if err != nil {
			answer = unavailableAnswer
		} else {
			answer = generated
		}
	}

	return c.Render(http.StatusOK, "search.html", searchPage{
		page:        page{Title: "Ask", CurrentUserID: currentUserID},
		Query:       request.Query,
		OtherUserID: request.UserID,
		AnswerHTML:  s.renderHTML(s.redactor.Redact(answer)),
	})
}

// renderHTML turns markdown into sanitized HTML that templates may embed.
func (s *Server) renderHTML(text string) template.HTML {
	return template.HTML(s.renderer.Render(text))
}
