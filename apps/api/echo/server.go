package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/annotation"
	"github.com/trezcool/markmywords/core/hierarchy"
	"github.com/trezcool/markmywords/core/session"
	"github.com/trezcool/markmywords/services/canvas"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Session        *session.Controller
		Theme          *session.Theme
		Hierarchy      *hierarchy.Service
		Pad            *annotation.Pad
		Raster         *canvas.Raster
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "Conf"),
		core.IsSet(deps.Logger, "Logger"),
		vala.IsNotNil(deps.Session, "Session"),
		vala.IsNotNil(deps.Theme, "Theme"),
		vala.IsNotNil(deps.Hierarchy, "Hierarchy"),
		vala.IsNotNil(deps.Pad, "Pad"),
		vala.IsNotNil(deps.Raster, "Raster"),
		vala.IsNotNil(deps.Validate, "Validate"),
		core.IsSet(deps.Translator, "Translator"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.Session),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.deps.Session)
	s.app.Debug = conf.Debug

	// a new login or a logout drops the gesture in progress and the strokes on screen
	s.deps.Session.OnLogout(s.resetCanvas)

	s.app.GET("/", home(conf.AppName))

	v1 := s.app.Group("/v1")
	authed := s.auth.middleware()

	registerSessionAPI(v1, authed, s)
	registerThemeAPI(v1, s.deps.Theme)
	registerHierarchyAPI(v1, authed, s)
	registerCanvasAPI(v1, authed, s)
}

func (s *Server) resetCanvas() {
	s.deps.Pad.Reset()
	s.deps.Raster.Clear()
}

// showTask resets the canvas and draws the strokes already committed to taskID.
func (s *Server) showTask(taskID string) {
	s.resetCanvas()
	if taskID != "" {
		s.deps.Raster.Replay(s.deps.Hierarchy.AnnotationsForTask(taskID), annotation.DefaultColour)
	}
}

// Start listens on the configured address; failures are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+"!")
	}
}
