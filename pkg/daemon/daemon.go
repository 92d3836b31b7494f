package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/events"
	"github.com/charlie0129/cellentry/pkg/session"
)

// Server holds everything the HTTP handlers need. Each session in the store
// is independent; the server itself only routes requests to them.
type Server struct {
	conf  config.Config
	store *session.Store
	hub   *events.EventHub
}

// NewServer creates a server whose new sessions follow conf.
func NewServer(conf config.Config) *Server {
	s := &Server{
		conf: conf,
		hub:  events.NewEventHub(),
	}
	s.store = session.NewStore(s.sessionOptions)
	return s
}

func (s *Server) sessionOptions() session.Options {
	return session.Options{
		CarryOverCurrents: s.conf.CarryOverCurrents(),
		Sampler:           cell.NewUniformSampler(s.conf.MinTemperature(), s.conf.MaxTemperature(), nil),
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/version", getVersion)
	router.GET("/config", s.getConfig)
	router.PUT("/config/carry-over-currents", s.setCarryOverCurrents)
	router.PUT("/config/default-cell-count", s.setDefaultCellCount)
	router.GET("/events", s.streamEvents)

	router.POST("/sessions", s.createSession)
	router.GET("/sessions", s.listSessions)

	sessions := router.Group("/sessions/:id")
	sessions.GET("", s.getSession)
	sessions.DELETE("", s.deleteSession)
	sessions.POST("/reset", s.resetSession)
	sessions.PUT("/cells", s.registerCells)
	sessions.GET("/cells", s.getCells)
	sessions.GET("/cells/:key", s.getCell)
	sessions.PUT("/cells/:key/current", s.setCurrent)
	sessions.GET("/summary", s.getSummary)
	sessions.GET("/export", s.exportCSV)

	return router
}

// Handler returns the HTTP handler of the daemon API.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Options configures Run.
type Options struct {
	ConfigPath     string
	UnixSocketPath string
	// HTTPAddr additionally serves the API over TCP when not empty.
	HTTPAddr     string
	AllowNonRoot bool
}

func Run(opts Options) error {
	conf, err := config.NewFile(opts.ConfigPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
		}
	}()

	s := NewServer(conf)
	router := s.setupRoutes()

	// A stale socket from a crashed daemon would make Listen fail.
	if err := os.Remove(opts.UnixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("failed to remove stale socket %s: %v", opts.UnixSocketPath, err)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", opts.UnixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", opts.UnixSocketPath)
		err = os.Chmod(opts.UnixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	unixSrv := &http.Server{Handler: router}
	servers := []*http.Server{unixSrv}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := unixSrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	if opts.HTTPAddr != "" {
		tcpSrv := &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, tcpSrv)
		go func() {
			logrus.Infof("http server listening on %s", opts.HTTPAddr)
			if err := tcpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatal(err)
			}
		}()
	}

	r, err := newReaper(s.store, conf, reapSchedule)
	if err != nil {
		logrus.Fatalf("failed to set up session reaper: %v", err)
	}
	r.Start()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("stopping session reaper")
	r.Stop()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
	}
	cancel()

	logrus.WithField("sessions", s.store.Len()).Info("exiting, in-memory sessions are discarded")
	return nil
}
