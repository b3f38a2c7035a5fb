package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/store"
)

// secretPlaceholder stands in for secret memo bodies in listings.
const secretPlaceholder = "🔒 Secret memo"

func (s *Server) registerUserRoutes(e *echo.Echo) {
	e.GET("/users/:uid", func(c echo.Context) error {
		ctx := c.Request().Context()
		userID := c.Param("uid")
		currentUserID := getCurrentUserID(c)

		user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
		if err != nil {
			if common.ErrorCode(err) == common.NotFound {
				return echo.NewHTTPError(http.StatusNotFound, "User not found.")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to find user.").SetInternal(err)
		}

		isOwner := currentUserID == userID
		find := &store.FindMemo{
			CreatorID:      &userID,
			VisibilityList: []store.Visibility{store.Public},
		}
		if isOwner {
			find.VisibilityList = []store.Visibility{store.Public, store.Private, store.Secret}
		}
		memos, err := s.Store.ListMemos(ctx, find)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list memos.").SetInternal(err)
		}

		items := make([]memoItem, 0, len(memos))
		for _, memo := range memos {
			item := memoItem{ID: memo.ID, Body: memo.Content, Visibility: memo.Visibility.String()}
			if memo.Visibility == store.Secret {
				item.Body = secretPlaceholder
			}
			items = append(items, item)
		}

		return c.Render(http.StatusOK, "index.html", indexPage{
			page:     page{Title: user.Username, CurrentUserID: currentUserID},
			Username: user.Username,
			UserID:   user.ID,
			Memos:    items,
		})
	})
}
