package server

import (
	"context"
	"net/http"

	"edupay/internal/config"
	"edupay/internal/handler"
	appmw "edupay/internal/middleware"
	"edupay/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	cfg            *config.Config
	paymentHandler *handler.PaymentHandler
	contentHandler *handler.ContentHandler
	access         service.AccessService
	cardCharge     bool
}

func NewServer(
	cfg *config.Config,
	paymentHandler *handler.PaymentHandler,
	contentHandler *handler.ContentHandler,
	access service.AccessService,
	cardCharge bool,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = appHTTPErrorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		cfg:            cfg,
		paymentHandler: paymentHandler,
		contentHandler: contentHandler,
		access:         access,
		cardCharge:     cardCharge,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := appmw.Auth(s.cfg.Auth.JWTSecret)

	payments := api.Group("/payments")
	payments.POST("/create", s.paymentHandler.CreateCheckout, auth)
	payments.GET("/status", s.paymentHandler.Status, auth)

	// Gateway notification endpoint; authenticated by payload signature,
	// not by a user token.
	payments.POST("/notify", s.paymentHandler.Webhook)

	if s.cardCharge {
		payments.POST("/card-charge", s.paymentHandler.ChargeCard, auth)
	}

	// Manual verification against the gateway's sandbox; the route does
	// not exist in production deployments.
	if !s.cfg.Environment.IsProduction() {
		payments.POST("/verify-sandbox", s.paymentHandler.VerifySandbox, auth)
	}

	content := api.Group("/content", auth)
	content.GET("/:model/:id", s.contentHandler.Get, appmw.PayGate(s.access))
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
