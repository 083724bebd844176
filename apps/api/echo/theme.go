package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/markmywords/core/session"
)

// the login card is themed too, so the theme needs no login
func registerThemeAPI(g *echo.Group, theme *session.Theme) {
	tg := g.Group("/theme")
	tg.GET("", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, ThemeResponse{Theme: theme.Mode()})
	})
	tg.POST("/toggle", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, ThemeResponse{Theme: theme.Toggle()})
	})
}
