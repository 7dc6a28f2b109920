package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"watch2give/core"
	"watch2give/core/types"
	"watch2give/observability"
	w2gotel "watch2give/observability/otel"
)

const (
	jsonRPCVersion         = "2.0"
	defaultMaxRequestBytes = 1 << 20 // 1 MiB
	requestIDHeader        = "X-Request-ID"
	metricsModule          = "watch2give"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeCallReverted   = -32003
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// Config tunes the JSON-RPC server.
type Config struct {
	MaxRequestBytes   int64
	RequestsPerMinute int
	Burst             int
	JWTSecret         []byte
	JWTIssuer         string
	// TrustedProxies lists peer addresses allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type Server struct {
	ledger  *core.Ledger
	cfg     Config
	auth    *Authenticator
	limiter *rateLimiter
	proxies trustedProxies
	logger  *slog.Logger
	tracer  trace.Tracer
	http    *http.Server
}

func NewServer(ledger *core.Ledger, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = defaultMaxRequestBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ledger:  ledger,
		cfg:     cfg,
		auth:    NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer),
		limiter: newRateLimiter(cfg.RequestsPerMinute, cfg.Burst),
		proxies: newTrustedProxies(cfg.TrustedProxies),
		logger:  logger.With(slog.String("component", "rpc")),
		tracer:  w2gotel.Tracer("watch2give/rpc"),
	}
}

// Handler returns the HTTP surface: JSON-RPC on /, liveness on /healthz and
// prometheus metrics on /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)

	return otelhttp.NewHandler(r, "watch2give.rpc")
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("JSON-RPC server listening", slog.String("addr", addr))
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown rpc server: %w", err)
		}
		return nil
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// statusWriter remembers the status code for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) handle(rw http.ResponseWriter, r *http.Request) {
	started := time.Now()
	w := &statusWriter{ResponseWriter: rw, status: http.StatusOK}
	method := "unknown"
	defer func() {
		observability.ModuleMetrics().Observe(metricsModule, method, w.status, time.Since(started))
	}()

	w.Header().Set("Content-Type", "application/json")

	if !s.limiter.allow(s.proxies.clientSource(r)) {
		observability.ModuleMetrics().RecordThrottle(metricsModule, "rate_limit")
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	reader := http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()
	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %s not found", req.Method), nil)
		return
	}
	method = req.Method

	ctx, span := s.tracer.Start(r.Context(), "rpc."+req.Method, trace.WithAttributes(
		attribute.String("rpc.method", req.Method),
	))
	defer span.End()
	handler(w, r.WithContext(ctx), req)
	span.SetAttributes(attribute.Int("http.status_code", w.status))
}

// writeLedgerError maps ledger failures onto JSON-RPC errors. Reverts carry
// the receipt in data.
func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, req *RPCRequest, receipt *types.Receipt, err error) {
	if core.IsRevert(err) {
		var data interface{} = err.Error()
		if receipt != nil {
			data = receiptResult(receipt)
		}
		writeError(w, http.StatusOK, req.ID, codeCallReverted, "call reverted", data)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusServiceUnavailable, req.ID, codeServerError, "request cancelled", err.Error())
		return
	}
	s.logger.Error("ledger call failed",
		slog.String("method", req.Method),
		slog.String("request_id", requestIDFrom(r.Context())),
		slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "internal error", nil)
}
