package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rabithua/memoask/api"
	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/store"
)

func (s *Server) registerMemoRoutes(e *echo.Echo) {
	e.GET("/memo/create", func(c echo.Context) error {
		return c.Render(http.StatusOK, "create.html", createPage{
			page:      page{Title: "New memo", CurrentUserID: getCurrentUserID(c)},
			MaxLength: store.MaxContentLength,
		})
	}, requireSignIn("/"))

	e.POST("/memo/create", s.createMemo, requireSignIn("/"))

	e.GET("/memo/:mid", s.showMemo)
	e.POST("/memo/:mid", s.showMemo)

	e.POST("/memo/:mid/delete", func(c echo.Context) error {
		ctx := c.Request().Context()
		currentUserID := getCurrentUserID(c)
		memo, err := s.findOwnedMemo(c, currentUserID)
		if err != nil {
			return err
		}

		if err := s.Store.DeleteMemo(ctx, &store.DeleteMemo{ID: memo.ID}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete memo.").SetInternal(err)
		}
		s.logger.Info("memo deleted", zap.String("memo_id", memo.ID))
		return c.Redirect(http.StatusFound, "/users/"+currentUserID)
	}, requireSignIn("/login"))
}

func (s *Server) createMemo(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getCurrentUserID(c)

	count, err := s.Store.CountMemos(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count memos.").SetInternal(err)
	}
	if count >= store.MaxMemosPerUser {
		return echo.NewHTTPError(http.StatusForbidden, "You can keep at most 5 memos.")
	}

	request := &api.CreateMemoRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed create memo request.").SetInternal(err)
	}
	if utf8.RuneCountInString(request.Content) > store.MaxContentLength {
		return echo.NewHTTPError(http.StatusBadRequest, "Memos must be 300 characters or fewer.")
	}

	visibility := store.Public
	if request.Visibility != "" {
		visibility, err = store.ParseVisibility(request.Visibility)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, common.ErrorMessage(err))
		}
	}

	create := &store.Memo{
		CreatorID:  currentUserID,
		Content:    request.Content,
		Visibility: visibility,
	}
	if visibility == store.Secret {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate password hash.").SetInternal(err)
		}
		create.PasswordHash = string(passwordHash)
	}

	memo, err := s.Store.CreateMemo(ctx, create)
	if err != nil {
		if common.ErrorCode(err) == common.Invalid {
			return echo.NewHTTPError(http.StatusBadRequest, common.ErrorMessage(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create memo.").SetInternal(err)
	}

	if request.TagsEnabled() {
		tags := s.tagger.Generate(ctx, memo.Content)
		if _, err := s.Store.AttachTags(ctx, memo.ID, tags); err != nil {
			s.logger.Warn("failed to attach tags", zap.String("memo_id", memo.ID), zap.Error(err))
		}
	}

	return c.Redirect(http.StatusFound, "/memo/"+memo.ID)
}

// findOwnedMemo loads the memo named by the path and checks that
// currentUserID owns it.
func (s *Server) findOwnedMemo(c echo.Context, currentUserID string) (*store.Memo, error) {
	memoID := c.Param("mid")
	memo, err := s.Store.GetMemo(c.Request().Context(), &store.FindMemo{ID: &memoID})
	if err != nil {
		if common.ErrorCode(err) == common.NotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to find memo.").SetInternal(err)
	}
	if currentUserID == "" || memo.CreatorID != currentUserID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	return memo, nil
}

// showMemo renders a memo for its owner. Secret memos are unlocked by
// posting their password.
func (s *Server) showMemo(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getCurrentUserID(c)
	memo, err := s.findOwnedMemo(c, currentUserID)
	if err != nil {
		return err
	}

	tags, err := s.Store.ListMemoTags(ctx, memo.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tags.").SetInternal(err)
	}

	data := detailPage{
		page:      page{Title: "Memo", CurrentUserID: currentUserID},
		Memo:      memoItem{ID: memo.ID, Visibility: memo.Visibility.String()},
		CreatedAt: time.Unix(memo.CreatedTs, 0).UTC().Format(time.RFC3339),
		Tags:      tags,
	}

	if memo.Visibility == store.Secret {
		if c.Request().Method != http.MethodPost {
			return c.Render(http.StatusOK, "detail.html", data)
		}
		unlock := &api.UnlockMemoRequest{}
		if err := c.Bind(unlock); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed unlock request.").SetInternal(err)
		}
		if bcrypt.CompareHashAndPassword([]byte(memo.PasswordHash), []byte(unlock.Password)) != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Wrong password")
		}
	}

	data.Authorized = true
	data.MemoHTML = s.renderHTML(memo.Content)
	return c.Render(http.StatusOK, "detail.html", data)
}

func trimQuery(c echo.Context, name string) string {
	return strings.TrimSpace(c.QueryParam(name))
}
