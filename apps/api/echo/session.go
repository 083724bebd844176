package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core/hierarchy"
	"github.com/trezcool/markmywords/core/session"
)

type sessionApi struct {
	srv  *Server
	ctrl *session.Controller
}

func registerSessionAPI(g *echo.Group, authed echo.MiddlewareFunc, srv *Server) {
	api := sessionApi{srv: srv, ctrl: srv.deps.Session}

	sg := g.Group("/session")
	sg.POST("/login", api.login)
	sg.POST("/logout", api.logout, authed)
	sg.GET("", api.retrieve, authed)
	sg.PUT("/selection", api.updateSelection, authed)
}

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	usr, sessionID, err := api.ctrl.Login(data.Username, data.Password)
	if err != nil {
		if err == session.ErrAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	api.srv.resetCanvas()

	token, err := api.srv.auth.generateToken(usr, sessionID)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserResponse(usr)})
}

func (api *sessionApi) logout(ctx echo.Context) error {
	api.ctrl.Logout()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	usr, ok := api.ctrl.CurrentUser()
	if !ok {
		return errSessionEnded
	}
	return ctx.JSON(http.StatusOK, SessionResponse{User: newUserResponse(usr), Selection: api.ctrl.Selection()})
}

func (api *sessionApi) updateSelection(ctx echo.Context) error {
	var data session.Selection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Selection")
	}

	if data.TaskID != "" {
		if _, err := api.srv.deps.Hierarchy.GetTask(data.TaskID); err != nil {
			if errors.Cause(err) == hierarchy.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "getting task")
		}
	}

	prev := api.ctrl.Selection()
	if err := api.ctrl.Select(data); err != nil {
		return errSessionEnded
	}
	if data.TaskID != prev.TaskID {
		api.srv.showTask(data.TaskID)
	}
	return ctx.JSON(http.StatusOK, api.ctrl.Selection())
}
