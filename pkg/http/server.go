package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/biolinks/biolinks/pkg/metrics"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"github.com/biolinks/biolinks/pkg/session"
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

const (
	LayersQueryParam = "layers"
)

type ServerConfig struct {
	Port           uint
	RequestTimeout time.Duration
	// LogDir, when set, receives a rotated log of every request.
	LogDir string
}

type server struct {
	config       ServerConfig
	orchestrator atomic.Pointer[orchestrator.Orchestrator]
	sessions     *session.Provider
	metrics      *metrics.Recorder
	fastServer   *fasthttp.Server
	accessLog    *zap.Logger
}

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

func healthHandler(ctx *fasthttp.RequestCtx) {
	fmt.Fprintf(ctx, "ok")
}

func (s *server) apiGetDataHandler(ctx *fasthttp.RequestCtx) {
	caller := s.sessions.FromRequest(ctx)
	if caller == nil {
		s.respond(ctx, http.StatusUnauthorized, nil)
		return
	}

	var ids []string
	for _, id := range ctx.QueryArgs().PeekMulti(LayersQueryParam) {
		if len(id) > 0 {
			ids = append(ids, string(id))
		}
	}

	fetchCtx := context.Background()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, s.config.RequestTimeout)
		defer cancel()
	}

	response, err := s.orchestrator.Load().Fetch(fetchCtx, caller, ids)
	if err != nil {
		if errors.Is(err, orchestrator.ErrUnauthorized) {
			s.respond(ctx, http.StatusUnauthorized, nil)
			return
		}
		zaplog.Sugar().Warnf("data request for %v failed: %s", ids, err.Error())
		s.respond(ctx, http.StatusGatewayTimeout, nil)
		return
	}

	body, err := json.Marshal(response)
	if err != nil {
		zaplog.Sugar().Errorf("failed to encode data response: %s", err.Error())
		s.respond(ctx, http.StatusInternalServerError, nil)
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	s.respond(ctx, http.StatusOK, body)
}

func (s *server) apiGetPageLayersHandler(ctx *fasthttp.RequestCtx) {
	pageID, _ := ctx.UserValue("page").(string)

	registry := s.orchestrator.Load().Registry()
	if !registry.HasPage(pageID) {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	body, err := json.Marshal(registry.Describe(pageID))
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBody(body)
}

func (s *server) respond(ctx *fasthttp.RequestCtx, statusCode int, body []byte) {
	ctx.Response.SetStatusCode(statusCode)
	if body != nil {
		ctx.Response.SetBody(body)
	}
	s.metrics.ObserveRequest(strconv.Itoa(statusCode))
}

func panicHandler(ctx *fasthttp.RequestCtx, v interface{}) {
	zaplog.Sugar().Errorf("recovered from panic serving %s: %v", string(ctx.Path()), v)
	ctx.ResetBody()
	ctx.Response.SetStatusCode(http.StatusInternalServerError)
}

func NewServer(cfg ServerConfig, o *orchestrator.Orchestrator, sessions *session.Provider, recorder *metrics.Recorder) *server {
	if cfg.Port == 0 {
		cfg.Port = config.DefaultHttpPort
	}
	s := &server{
		config:   cfg,
		sessions: sessions,
		metrics:  recorder,
	}
	s.orchestrator.Store(o)
	return s
}

// SetOrchestrator swaps the orchestrator serving data requests. Requests
// already running finish on the previous one.
func (s *server) SetOrchestrator(o *orchestrator.Orchestrator) {
	s.orchestrator.Store(o)
}

// Handler routes every endpoint the server exposes.
func (s *server) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.PanicHandler = panicHandler
	r.GET("/health", healthHandler)

	if s.metrics != nil {
		metricsHandler := promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(metricsHandler))
	}

	api := r.Group("/api")
	{
		api.GET("/data", s.apiGetDataHandler)
		api.GET("/pages/{page}/layers", s.apiGetPageLayersHandler)
	}

	return r.Handler
}

func (s *server) Start() error {
	serverLogger, err := zap.NewStdLogAt(zaplog, zap.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	handler := s.Handler()
	if s.config.LogDir != "" {
		s.accessLog, err = loggers.NewFileLogger("access", s.config.LogDir)
		if err != nil {
			return err
		}
		handler = accessLogHandler(s.accessLog, handler)
	}

	s.fastServer = &fasthttp.Server{
		Handler: handler,
		Logger:  serverLogger,
	}

	go func() {
		if err := s.fastServer.ListenAndServe(fmt.Sprintf(":%d", s.config.Port)); err != nil {
			log.Fatal(err)
		}
	}()

	return nil
}

func (s *server) Shutdown() error {
	if s.fastServer == nil {
		return nil
	}
	err := s.fastServer.Shutdown()
	if s.accessLog != nil {
		_ = s.accessLog.Sync()
	}
	return err
}

func accessLogHandler(logger *zap.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		logger.Info("request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
