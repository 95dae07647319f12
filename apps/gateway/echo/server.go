package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/nav"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/httpclient"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger core.Logger
		Store  *session.Store
		Guard  *nav.Guard
		API    *httpclient.Client
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		// ShutdownSignal delivers OS termination signals and internal
		// shutdown requests raised by the error handler.
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.GetBool("debug")

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.GetBool("testMode")) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Store, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, s.opts)

	ag := s.app.Group(core.Conf.GetString("protectedPrefix"), guardMiddleware(s.opts.Guard))
	registerAppAPI(ag, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // shutdown already pending
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// home is the public entry point. An aborted protected navigation lands here
// with the intended destination in the `redirect` query parameter, ready to
// be resumed after login.
func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"app":      core.Conf.GetString("appName"),
		"login":    "/v1/login",
		"redirect": ctx.QueryParam("redirect"),
	})
}
