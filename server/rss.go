package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/store"
)

const (
	maxRSSItemCount       = 100
	maxRSSItemTitleLength = 100
)

func (s *Server) registerRSSRoutes(e *echo.Echo) {
	e.GET("/u/:uid/rss.xml", func(c echo.Context) error {
		ctx := c.Request().Context()
		userID := c.Param("uid")

		user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
		if err != nil {
			if common.ErrorCode(err) == common.NotFound {
				return echo.NewHTTPError(http.StatusNotFound, "User not found.")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to find user.").SetInternal(err)
		}

		limit := maxRSSItemCount
		memos, err := s.Store.ListMemos(ctx, &store.FindMemo{
			CreatorID:            &userID,
			VisibilityList:       []store.Visibility{store.Public},
			Limit:                &limit,
			OrderByCreatedTsDesc: true,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list memos.").SetInternal(err)
		}

		baseURL := c.Scheme() + "://" + c.Request().Host
		rss, err := s.generateRSSFromMemos(memos, baseURL, user)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate rss.").SetInternal(err)
		}
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
		return c.String(http.StatusOK, rss)
	})
}

func (s *Server) generateRSSFromMemos(memos []*store.Memo, baseURL string, user *store.User) (string, error) {
	feed := &feeds.Feed{
		Title:       user.Username + "'s memos",
		Link:        &feeds.Link{Href: baseURL + "/users/" + user.ID},
		Description: "Public memos of " + user.Username,
		Created:     time.Now(),
	}

	feed.Items = make([]*feeds.Item, len(memos))
	for i, memo := range memos {
		feed.Items[i] = &feeds.Item{
			Id:          memo.ID,
			Title:       getRSSItemTitle(memo.Content),
			Link:        &feeds.Link{Href: baseURL + "/memo/" + memo.ID},
			Description: s.renderer.Render(memo.Content),
			Created:     time.Unix(memo.CreatedTs, 0),
		}
	}
	return feed.ToRss()
}

func getRSSItemTitle(content string) string {
	title := strings.TrimSpace(strings.Split(content, "\n")[0])
	if utf8.RuneCountInString(title) > maxRSSItemTitleLength {
		title = string([]rune(title)[:maxRSSItemTitleLength]) + "..."
	}
	return title
}
