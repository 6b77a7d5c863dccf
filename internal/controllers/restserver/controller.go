package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/chrissnell/climatewatch/internal/dashboard"
	"github.com/chrissnell/climatewatch/internal/log"
	"github.com/chrissnell/climatewatch/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Pinger reports whether the upstream database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	service    *dashboard.Service
	upstream   Pinger
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, svc *dashboard.Service, upstream Pinger, rc config.RESTServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if svc == nil {
		return nil, fmt.Errorf("REST server requires a dashboard service")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultHTTPPort)
		rc.Port = config.DefaultHTTPPort
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		service:    svc,
		upstream:   upstream,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints and wraps it in the
// server's middleware
func (c *Controller) setupRouter() http.Handler {
	router := mux.NewRouter()

	// Routes live on the root router so a method mismatch answers 405 rather than 404
	router.HandleFunc("/api/rooms", c.handlers.GetRooms).Methods(http.MethodGet)
	router.HandleFunc("/api/status", c.handlers.GetStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/refresh", c.handlers.PostRefresh).Methods(http.MethodPost)

	router.HandleFunc("/api/data/day/{day}", c.handlers.GetData).Methods(http.MethodGet)
	router.HandleFunc("/api/data/range/{start}/{end}", c.handlers.GetData).Methods(http.MethodGet)

	router.HandleFunc("/api/export/day/{day}", c.handlers.GetExport).Methods(http.MethodGet)
	router.HandleFunc("/api/export/range/{start}/{end}", c.handlers.GetExport).Methods(http.MethodGet)

	router.HandleFunc("/api/chart/{chart}/day/{day}", c.handlers.GetChart).Methods(http.MethodGet)
	router.HandleFunc("/api/chart/{chart}/range/{start}/{end}", c.handlers.GetChart).Methods(http.MethodGet)

	var h http.Handler = router
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{c.logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
	h = log.HTTPMiddleware(h)
	h = requestIDMiddleware(h)

	if c.restConfig.EnableCORS {
		h = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.ExposedHeaders([]string{"Content-Disposition", log.RequestIDHeader}),
		)(h)
	}
	return h
}

// requestIDMiddleware tags every request with an ID, reusing one supplied by the client
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(log.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(log.RequestIDHeader, id)
		}
		w.Header().Set(log.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// recoveryLogger adapts zap to the gorilla recovery handler
type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(v...)
}
