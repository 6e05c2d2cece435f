package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"plaque-payments/internal/handler"
	"plaque-payments/internal/middleware"
	"plaque-payments/internal/service"
)

type Server struct {
	echo            *echo.Echo
	paymentsHandler *handler.PaymentsHandler
}

func NewServer(checkout *service.CheckoutService, reconciler *service.Reconciler, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(requestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Auth())

	s := &Server{
		echo:            e,
		paymentsHandler: handler.NewPaymentsHandler(checkout, reconciler, log),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	payments := api.Group("/payments")
	payments.GET("/currencies", s.paymentsHandler.GetCurrencies)
	payments.GET("/methods", s.paymentsHandler.GetPaymentMethods)
	payments.POST("/purchase", s.paymentsHandler.Purchase)
	payments.GET("/purchases", s.paymentsHandler.GetPurchases)
	payments.GET("/purchases/total", s.paymentsHandler.GetTotalSpent)
	payments.POST("/purchases/:id/poll", s.paymentsHandler.PollStatus)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
