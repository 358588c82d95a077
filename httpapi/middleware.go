package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alyssonw2/BD-AJ/auth"
	"github.com/alyssonw2/BD-AJ/collection"
	"github.com/alyssonw2/BD-AJ/filter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIdHeader = "X-Request-Id"

// ---------------------------

// RequestIdMiddleware reuses an incoming request id or generates a new one
// and echoes it on the response.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(requestIdHeader)
		if requestId == "" || len(requestId) > 64 {
			requestId = uuid.New().String()
		}
		c.Set("requestId", requestId)
		c.Header(requestIdHeader, requestId)
		c.Next()
	}
}

// ---------------------------

func ZerologLogger(metrics *httpMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ---------------------------
		// Start timer
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		// ---------------------------
		// Process request
		c.Next()
		// ---------------------------
		// Stop timer and gather information
		timeStamp := time.Now()
		latency := timeStamp.Sub(start)

		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		bodySize := c.Writer.Size()
		if bodySize < 0 {
			bodySize = 0
		}

		if raw != "" {
			path = path + "?" + raw
		}
		// ---------------------------
		logEvent := log.Info()
		if statusCode >= http.StatusInternalServerError {
			logEvent = log.Error()
		}
		logEvent = logEvent.Time("timeStamp", timeStamp).
			Dur("latency", latency).
			Str("clientIP", clientIP).
			Str("method", method).Str("path", path).
			Int("statusCode", statusCode).
			Str("errorMessage", errorMessage).
			Int("bodySize", bodySize).
			Str("requestId", c.GetString("requestId"))
		if username := c.GetString("username"); username != "" {
			logEvent = logEvent.Str("username", username)
		}
		logEvent.Msg("HTTPAPI")
		// ---------------------------
		if metrics != nil {
			// Route templates keep the label set bounded
			hname := c.FullPath()
			if hname == "" {
				hname = "unmatched"
			}
			ssCode := strconv.Itoa(statusCode)
			metrics.requestCount.WithLabelValues(ssCode, method, hname).Inc()
			metrics.requestDuration.WithLabelValues(ssCode, method, hname).Observe(latency.Seconds())
			if c.Request.ContentLength >= 0 {
				metrics.requestSize.WithLabelValues(ssCode, method, hname).Observe(float64(c.Request.ContentLength))
			}
			metrics.responseSize.WithLabelValues(ssCode, method, hname).Observe(float64(bodySize))
		}
	}
}

// ---------------------------

func CorsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			for _, o := range allowedOrigins {
				if strings.TrimSpace(o) == origin {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Vary", "Origin")
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIdHeader)
		c.Header("Access-Control-Expose-Headers", requestIdHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ---------------------------

// AuthMiddleware verifies the Authorization header when required is set. The
// username of a valid token is available to handlers under "username".
func AuthMiddleware(tokens *auth.TokenIssuer, required bool) gin.HandlerFunc {
	if !required {
		log.Warn().Msg("AuthMiddleware is disabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token", "message": "Token não fornecido"})
			return
		}
		username, err := tokens.Verify(header)
		if err != nil {
			log.Debug().Err(err).Msg("AuthMiddleware")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "message": "Token inválido"})
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

// ---------------------------

type CollectionUri struct {
	Folder string `uri:"folder" binding:"required"`
}

func CollectionURIMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri CollectionUri
		if err := c.ShouldBindUri(&uri); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := collection.ValidateName(uri.Folder); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Set("folder", uri.Folder)
		c.Next()
	}
}

// ---------------------------

// abortWithError maps domain errors onto status codes. Anything unrecognised
// is a storage failure whose cause is only exposed in debug mode.
func abortWithError(c *gin.Context, debug bool, err error, message string) {
	c.Error(err)
	status := http.StatusInternalServerError
	errText := "internal error"
	switch {
	case errors.Is(err, collection.ErrCollectionNotFound),
		errors.Is(err, collection.ErrRecordNotFound),
		errors.Is(err, collection.ErrUploadMetadataNotFound),
		errors.Is(err, collection.ErrUploadNotFound):
		status = http.StatusNotFound
		errText = err.Error()
	case errors.Is(err, collection.ErrInvalidName),
		errors.Is(err, filter.ErrInvalidPredicate),
		errors.Is(err, auth.ErrUserExists):
		status = http.StatusBadRequest
		errText = err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
		errText = err.Error()
	}
	body := gin.H{"error": errText}
	if message != "" {
		body["message"] = message
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("requestId", c.GetString("requestId")).Msg("request failed")
		if debug {
			body["detail"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}
