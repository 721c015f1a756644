package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/handler"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/middleware"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
)

type Server struct {
	echo            *echo.Echo
	donationHandler *handler.DonationHandler
	companyHandler  *handler.CompanyHandler
	webhookHandler  *handler.WebhookHandler
	providers       []pay.Provider
	jwtSecret       string
}

func NewServer(
	donationHandler *handler.DonationHandler,
	companyHandler *handler.CompanyHandler,
	webhookHandler *handler.WebhookHandler,
	providers []pay.Provider,
	jwtSecret string,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		donationHandler: donationHandler,
		companyHandler:  companyHandler,
		webhookHandler:  webhookHandler,
		providers:       providers,
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authed := api.Group("", middleware.JWTAuth(s.jwtSecret))
	authed.POST("/donations", s.donationHandler.Initiate)
	authed.GET("/donations/braintree/token", s.donationHandler.BraintreeToken)
	authed.POST("/companies", s.companyHandler.CreateCompany)
	authed.GET("/companies/:id", s.companyHandler.GetCompany)
	authed.POST("/events", s.companyHandler.CreateEvent)

	api.GET("/events/:id", s.companyHandler.GetEvent)

	// -------- provider redirects --------
	api.GET("/donations/success", s.donationHandler.HandleSuccess)
	api.GET("/donations/failure", s.donationHandler.HandleFailure)

	// -------- provider webhooks --------
	webhooks := api.Group("/webhooks")
	for _, p := range s.providers {
		webhooks.POST("/"+p.Name(), s.webhookHandler.Handle(p))
	}

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
