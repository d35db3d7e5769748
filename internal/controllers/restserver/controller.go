// Package restserver serves the dashboard API over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fireline/fireline/internal/analysis"
	"github.com/fireline/fireline/internal/dataset"
	"github.com/fireline/fireline/internal/geo"
	"github.com/fireline/fireline/internal/log"
	"github.com/fireline/fireline/pkg/config"
)

// Controller represents the REST server controller. The dataset store and
// the geographic reference data are loaded once at startup and served
// read-only.
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	httpConfig config.HTTPData
	Server     http.Server
	store      *dataset.Store
	boroughs   []geo.Borough
	population map[string]int
	targets    analysis.Targets
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store *dataset.Store, boroughs []geo.Borough, population map[string]int, logger *zap.SugaredLogger) (*Controller, error) {
	hc := cfg.HTTP
	if hc.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		hc.ListenAddr = "0.0.0.0"
	}
	if hc.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8080")
		hc.Port = 8080
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		httpConfig: hc,
		store:      store,
		boroughs:   boroughs,
		population: population,
		targets: analysis.Targets{
			AttendanceTargetSeconds: float64(cfg.Targets.AttendanceTargetSeconds),
			ExtremeDelaySeconds:     float64(cfg.Targets.ExtremeDelaySeconds),
		},
		logger: logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", hc.ListenAddr, hc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server.
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestLogMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/filters", c.handlers.GetFilters)
	api.HandleFunc("/summary", c.handlers.GetSummary)
	api.HandleFunc("/composition", c.handlers.GetComposition)
	api.HandleFunc("/performance", c.handlers.GetPerformance)
	api.HandleFunc("/geographic", c.handlers.GetGeographic)
	api.HandleFunc("/drivers", c.handlers.GetDrivers)
	api.HandleFunc("/health", c.handlers.GetHealth)

	return router
}
