package httpapi

import (
	"context"
	"time"

	"question_rotation_service/internal/app"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const defaultRequestTimeout = 5 * time.Second

// Server exposes the lookup and catalog operations over HTTP.
type Server struct {
	echo           *echo.Echo
	lookup         app.LookupService
	catalog        *app.CatalogService
	logger         *logrus.Logger
	requestTimeout time.Duration
}

func NewServer(lookup app.LookupService, catalog *app.CatalogService, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	srv := &Server{
		echo:           e,
		lookup:         lookup,
		catalog:        catalog,
		logger:         logger,
		requestTimeout: defaultRequestTimeout,
	}

	e.GET("/current-question", srv.GetCurrentQuestion)
	e.POST("/regions", srv.CreateRegion)
	e.POST("/questions", srv.CreateQuestion)
	e.POST("/eligibility", srv.CreateEligibility)
	e.GET("/regions", srv.ListRegions)
	e.GET("/healthz", srv.Healthz)

	return srv
}

func (srv *Server) Start(addr string) error {
	return srv.echo.Start(addr)
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.echo.Shutdown(ctx)
}
