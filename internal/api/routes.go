// Package api exposes the evaluation pipeline over HTTP.
package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brandai/backend/internal/ai"
	"brandai/backend/internal/catalog"
	"brandai/backend/internal/evaluation"
	"brandai/backend/internal/failure"
	"brandai/backend/internal/imagen"
	"brandai/backend/internal/vision"
)

const (
	requestIDHeader       = "X-Request-ID"
	defaultMaxUploadBytes = 20 << 20
	notDetectedDetail     = "Brand logo could not be detected in the image. Please try another image."
)

// Config defines server dependencies. Nil adapters are allowed; requests that
// need them fail with a 500.
type Config struct {
	Catalog        *catalog.Catalog
	Analyzer       vision.Analyzer
	Critic         ai.Critic
	Generator      imagen.Generator
	StaticDir      string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wires HTTP handlers with the evaluation pipeline.
type Server struct {
	catalog        *catalog.Catalog
	orchestrator   *evaluation.Orchestrator
	evalNotifier   *EvaluationNotifier
	staticDir      string
	allowedOrigins []string
	maxUploadBytes int64
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("brand catalog required")
	}
	notifier := NewEvaluationNotifier()
	server := &Server{
		catalog: cfg.Catalog,
		orchestrator: evaluation.New(evaluation.Deps{
			Catalog:   cfg.Catalog,
			Analyzer:  cfg.Analyzer,
			Critic:    cfg.Critic,
			Generator: cfg.Generator,
			Observer:  notifier,
		}),
		evalNotifier:   notifier,
		staticDir:      cfg.StaticDir,
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if server.maxUploadBytes <= 0 {
		server.maxUploadBytes = defaultMaxUploadBytes
	}
	if server.staticDir == "" {
		server.staticDir = "static"
	}
	return server, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))
	r.Use(requestID())

	r.StaticFile("/", filepath.Join(s.staticDir, "index.html"))
	r.Static("/static", s.staticDir)

	r.POST("/evaluate", s.handleEvaluate)
	r.POST("/regenerate", s.handleRegenerate)

	api := r.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/brands", s.handleListBrands)
		api.POST("/brands/reload", s.handleReloadBrands)
		api.GET("/evaluate/stream", s.handleEvaluateStream)
	}

	return r, nil
}

// requestID echoes a caller supplied X-Request-ID or mints one, and tags the
// request context with it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(evaluation.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "brands": s.catalog.Len()})
}

func (s *Server) handleListBrands(c *gin.Context) {
	records := s.catalog.Records()
	items := make([]BrandDTO, 0, len(records))
	for _, record := range records {
		items = append(items, BrandFromRecord(record))
	}
	c.JSON(http.StatusOK, BrandsResponse{Source: s.catalog.Source(), Count: len(items), Items: items})
}

func (s *Server) handleReloadBrands(c *gin.Context) {
	if err := s.catalog.Load(c.Request.Context()); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	s.handleListBrands(c)
}

func (s *Server) handleEvaluateStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	requestID := strings.TrimSpace(c.Query("request_id"))
	client := s.evalNotifier.Register(conn, requestID)
	logrus.WithFields(logrus.Fields{
		"remote":     conn.RemoteAddr().String(),
		"request_id": requestID,
	}).Info("evaluation websocket connected")
	defer s.evalNotifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("evaluation websocket closed")
			} else {
				logrus.WithError(err).Warn("evaluation websocket unexpected close")
			}
			break
		}
	}
}

// statusFor maps the failure taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case failure.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, failure.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderFailure(c *gin.Context, err error) {
	s.renderError(c, statusFor(err), err)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	detail := err.Error()
	switch {
	case errors.Is(err, failure.ErrBrandNotDetected):
		detail = notDetectedDetail
	case status >= http.StatusInternalServerError:
		detail = "An internal error occurred: " + detail
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
		"status":     status,
	}).Warn("request failed")
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}
