package transport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go-audio-emotion/internal/config"
	apperrors "go-audio-emotion/internal/errors"
	"go-audio-emotion/internal/logger"
	"go-audio-emotion/internal/observer"
	"go-audio-emotion/internal/service"
	"go-audio-emotion/pkg/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// UploadField is the multipart field carrying the audio file
	UploadField = "audio_file"
	// uploadFieldAlias is accepted for clients posting a generic "file"
	uploadFieldAlias = "file"

	ServiceName    = "audio-emotion-detection"
	ServiceVersion = "1.0.0"

	processingFailed = "Audio processing failed"
)

// NewHandler builds the gin engine. metrics may be nil.
func NewHandler(svc service.EmotionService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		corsMiddleware(cfg.AllowedOrigins()),
	)
	if cfg.MaxUploadSize > 0 {
		r.Use(requestSizeLimiter(cfg.MaxUploadSize))
	}

	// Configure routes
	r.GET("/", root(cfg))
	r.GET("/health", healthCheck)
	if !cfg.IsProduction() {
		registerDocs(r)
	}

	api := r.Group("/api/audio")
	api.POST("/analyze", analyzeAudio(svc))
	api.GET("/metrics", metricsHandler(metrics))

	return r
}

// analyzeAudio godoc
// @Summary      Analyze the emotion carried by an audio file
// @Description  Upload an audio file (WAV, MP3, FLAC or Ogg Vorbis) and receive emotion analysis results
// @Tags         audio
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio_file  formData  file  true  "Audio file with an audio/* content type"
// @Success      200  {object}  models.AnalysisResult
// @Failure      400  {object}  models.ErrorResponse
// @Failure      413  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/audio/analyze [post]
func analyzeAudio(svc service.EmotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		fileHeader, err := uploadedFile(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "Audio file too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "Invalid request",
				apperrors.NewValidationError("No audio file provided in field "+UploadField, err))
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		payload, err := readUpload(fileHeader)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request",
				apperrors.NewValidationError("Failed to read audio file", err))
			return
		}

		if err := svc.ValidateUpload(contentType, payload); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "Invalid audio file", err)
			return
		}

		audioID := uuid.New().String()

		logger.WithFields(logrus.Fields{
			"audio_id":     audioID,
			"filename":     fileHeader.Filename,
			"content_type": contentType,
			"size":         len(payload),
			"ip":           c.ClientIP(),
		}).Info("Processing audio analysis request")

		result, err := svc.ProcessAudio(c.Request.Context(), payload, audioID)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				respondError(c, http.StatusBadRequest, "Invalid audio file", err)
				return
			}
			respondError(c, http.StatusInternalServerError, processingFailed, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"audio_id":         audioID,
			"detected_emotion": result.DetectedEmotion,
			"confidence":       result.Confidence,
			"request_time_ms":  time.Since(startTime).Milliseconds(),
		}).Info("Audio analysis completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

func uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(UploadField)
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) {
		if alias, aliasErr := c.FormFile(uploadFieldAlias); aliasErr == nil {
			return alias, nil
		}
	}
	return nil, err
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// root godoc
// @Summary  Service banner
// @Tags     service
// @Produce  json
// @Success  200  {object}  models.RootResponse
// @Router   / [get]
func root(cfg *config.Config) gin.HandlerFunc {
	var docsPath *string
	if !cfg.IsProduction() {
		p := DocsPath
		docsPath = &p
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.RootResponse{
			Status:  "healthy",
			Message: "Audio Emotion Detection API is running",
			Docs:    docsPath,
		})
	}
}

// healthCheck godoc
// @Summary  Liveness check
// @Tags     service
// @Produce  json
// @Success  200  {object}  models.HealthResponse
// @Router   /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		Service:     ServiceName,
		Version:     ServiceVersion,
		ModelLoaded: true,
	})
}

// metricsHandler godoc
// @Summary  Analysis counters since start-up
// @Tags     audio
// @Produce  json
// @Success  200  {object}  observer.Metrics
// @Router   /api/audio/metrics [get]
func metricsHandler(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, observer.Metrics{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, allowAll := allowed["*"]

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowAll {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Debug("Request handled")
	}
}

// respondError writes the {error, detail} envelope. Server errors carry the
// raw failure message prefixed with the generic error text.
func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	detail := err.Error()
	if code >= http.StatusInternalServerError {
		detail = message + ": " + detail
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:  message,
		Detail: detail,
	})
}
