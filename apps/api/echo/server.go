package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
	"github.com/examcenter/backend/core/contact"
	"github.com/examcenter/backend/core/course"
	"github.com/examcenter/backend/core/resource"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/core/trainer"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		AdminSvc    admin.Service
		TestDateSvc testdate.Service
		CourseSvc   course.Service
		TrainerSvc  trainer.Service
		ResourceSvc resource.Service
		ContactSvc  contact.Service
	}

	Server struct {
		conf     *core.Config
		logger   core.Logger
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		conf:     deps.Conf,
		logger:   deps.Logger,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.AdminSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, deps.Translator, s.SignalShutdown)

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	v1.POST("/admin/login", s.auth.login(deps.Validate))

	// every admin request re-checks the allowlist
	ag := v1.Group("/admin", middleware.JWTWithConfig(s.auth.jwtConfig), adminMiddleware(deps.AdminSvc))
	ag.POST("/token-refresh", s.auth.refresh)

	registerTestDateAPI(v1, ag, deps.TestDateSvc, deps.Validate, deps.Logger)
	registerCourseAPI(v1, ag, deps.CourseSvc, deps.Validate)
	registerTrainerAPI(v1, ag, deps.TrainerSvc, deps.Validate)
	registerResourceAPI(v1, ag, deps.ResourceSvc, deps.Validate)
	registerContactAPI(v1, deps.ContactSvc, deps.Validate)
}

// Start blocks serving requests; listener failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the owner of the server to stop it gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
