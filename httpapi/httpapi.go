package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alyssonw2/BD-AJ/auth"
	"github.com/alyssonw2/BD-AJ/collection"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HttpApiConfig struct {
	// Mirrors the global debug flag
	Debug bool `yaml:"-"`
	// HTTP Parameters
	HttpHost string `yaml:"httpHost"`
	HttpPort int    `yaml:"httpPort"`
	// Prometheus metrics are served on a separate port, disabled when zero
	MetricsHttpPort int `yaml:"metricsHttpPort"`
	// Require a bearer token on data and upload routes
	RequireAuth bool `yaml:"requireAuth"`
	// CORS origins, a single "*" allows every origin
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// Maximum multipart upload size in bytes
	MaxUploadSize int64 `yaml:"maxUploadSize"`
}

// ---------------------------

func pongHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong from bdaj",
	})
}

// ---------------------------

func setupRouter(store *collection.Store, users *auth.UserStore, tokens *auth.TokenIssuer, cfg HttpApiConfig, metrics *httpMetrics) *gin.Engine {
	router := gin.New()
	router.Use(RequestIdMiddleware(), ZerologLogger(metrics), gin.Recovery(), CorsMiddleware(cfg.AllowedOrigins))
	router.GET("/ping", pongHandler)
	// ---------------------------
	h := &Handlers{store: store, users: users, tokens: tokens, cfg: cfg}
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	// Uploaded blobs are public, like the static directory they replace
	router.GET("/uploads/*filepath", h.ServeUpload)
	// ---------------------------
	protected := router.Group("", AuthMiddleware(tokens, cfg.RequireAuth))
	protected.POST("/upload", h.CreateUpload)
	protected.DELETE("/upload/:filename", h.DeleteUpload)
	protected.GET("/listalluploads", h.ListUploads)
	// ---------------------------
	colRoutes := protected.Group("/data/:folder", CollectionURIMiddleware())
	colRoutes.GET("", h.ListRecords)
	colRoutes.POST("", h.CreateRecord)
	colRoutes.POST("/filter", h.FilterRecords)
	colRoutes.PUT("/:id", h.UpdateRecord)
	colRoutes.DELETE("/:id", h.DeleteRecord)
	return router
}

func RunHTTPServer(cfg HttpApiConfig, store *collection.Store, users *auth.UserStore, tokens *auth.TokenIssuer) *http.Server {
	// ---------------------------
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	var metrics *httpMetrics
	if cfg.MetricsHttpPort > 0 {
		metrics = setupAndListenMetrics(cfg)
	}
	// ---------------------------
	server := &http.Server{
		Addr:              cfg.HttpHost + ":" + strconv.Itoa(cfg.HttpPort),
		Handler:           setupRouter(store, users, tokens, cfg, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("httpAddr", server.Addr).Bool("requireAuth", cfg.RequireAuth).Msg("HTTPAPI.Serve")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start http server")
		}
	}()
	return server
}
