package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerTagRoutes(e *echo.Echo) {
	e.GET("/tag/search", func(c echo.Context) error {
		ctx := c.Request().Context()
		data := tagSearchPage{
			page:    page{Title: "Tag search", CurrentUserID: getCurrentUserID(c)},
			TagName: trimQuery(c, "name"),
			Memos:   []memoItem{},
		}
		if data.TagName == "" {
			return c.Render(http.StatusOK, "tag_search.html", data)
		}

		memos, err := s.Store.ListMemosByTag(ctx, data.TagName)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search tags.").SetInternal(err)
		}
		for _, memo := range memos {
			data.Memos = append(data.Memos, memoItem{ID: memo.ID, Body: memo.Content, Visibility: memo.Visibility.String()})
		}
		return c.Render(http.StatusOK, "tag_search.html", data)
	}, requireSignIn("/login"))
}
