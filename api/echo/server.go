package echoapi

import (
	"context"
	htmltmpl "html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
	appfs "github.com/takanag/nenga/fs"
	mediasvc "github.com/takanag/nenga/services/media"
)

type (
	// ServerDeps carries everything the HTTP layer needs; main wires it.
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        *user.Service
		GreetingSvc    *greeting.Service
		TranslateSvc   core.Translator
		Media          *mediasvc.Processor
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signalShutdownOnInterrupt(s.shutdown)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	appJWTConfig.SigningKey = []byte(conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.Renderer = newPageRenderer()
	s.app.HideBanner = true

	s.app.Static(conf.Media.BaseURL, conf.Media.Root)

	s.app.GET("/", home)
	registerPages(s.app, s.deps)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.deps)
	registerGreetingAPI(api, jwt, s.deps)
	registerTranslateAPI(api, jwt, s.deps)
	registerUploadAPI(api, jwt, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown is used by the error handler to gracefully shutdown the
// server when a non-trusted error is caught.
func (s *server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func signalShutdownOnInterrupt(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}

func home(ctx echo.Context) error {
	return ctx.Redirect(http.StatusFound, "/admin")
}

// pageRenderer serves the embedded server-rendered templates.
type pageRenderer struct {
	templates *htmltmpl.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		templates: htmltmpl.Must(htmltmpl.ParseFS(appfs.FS, "templates/pages/*.gohtml")),
	}
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
