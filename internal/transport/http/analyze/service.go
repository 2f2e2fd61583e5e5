// Package analyze exposes the trust scoring pipeline over HTTP.
package analyze

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"civic-eye-server-go/internal/domain/engine"
	"civic-eye-server-go/internal/platform/config"
	"civic-eye-server-go/internal/platform/errors"
	"civic-eye-server-go/internal/platform/logging"
	httptransport "civic-eye-server-go/internal/transport/http"
)

// Service is the HTTP transport layer over the analysis engine.
type Service struct {
	logger *logging.Logger
	config *config.Config
	engine *engine.Engine
}

// NewService creates the analyze service.
func NewService(cfg *config.Config, logger *logging.Logger, eng *engine.Engine) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "logger is required")
	}
	if eng == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "engine is required")
	}

	return &Service{
		logger: logger,
		config: cfg,
		engine: eng,
	}, nil
}

// Register mounts the analyze routes on the API group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/analyze", s.handleGet)
	router.POST("/analyze", s.handlePost)
	router.OPTIONS("/analyze", func(c *gin.Context) { c.Status(http.StatusOK) })

	s.logger.InfoTag("HTTP", "analyze routes registered")
	return nil
}

// handleGet reports service readiness.
// @Summary Analyze service status
// @Description Reports whether the scoring pipeline is ready
// @Tags Analyze
// @Produce json
// @Success 200 {object} httptransport.APIResponse
// @Router /analyze [get]
func (s *Service) handleGet(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"status":          "ready",
		"max_file_size":   s.config.Engine.MaxFileSize,
		"allowed_formats": s.config.Engine.AllowedFormats,
	}, "analyze service running")
}

// handlePost scores one uploaded photo.
// @Summary Score a civic report photo
// @Description Uploads a photo and returns its trust score, severity and dispatch priority
// @Tags Analyze
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "photo to score"
// @Param issue_type formData string false "claimed issue category"
// @Success 200 {object} httptransport.APIResponse
// @Failure 400 {object} httptransport.APIResponse
// @Failure 500 {object} httptransport.APIResponse
// @Router /analyze [post]
func (s *Service) handlePost(c *gin.Context) {
	raw, issueType, err := s.parseRequest(c)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		s.logger.Warn("analyze request rejected: %v", err)
		return
	}

	result, err := s.engine.Analyze(c.Request.Context(), raw, issueType)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsDecode(err) {
			status = http.StatusBadRequest
		}
		httptransport.RespondError(c, status, err.Error(), nil)
		s.logger.Warn("analyze failed: %v", err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, result, "analysis complete")
}

// parseRequest accepts either a multipart upload under the image field or
// the photo bytes as the raw request body.
func (s *Service) parseRequest(c *gin.Context) ([]byte, string, error) {
	maxSize := s.config.Engine.MaxFileSize

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(maxSize); err != nil {
			return nil, "", fmt.Errorf("failed to parse multipart form: %w", err)
		}

		file, header, err := s.formFile(c)
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		if maxSize > 0 && header.Size > maxSize {
			return nil, "", fmt.Errorf("file size exceeds limit of %d bytes", maxSize)
		}

		raw, err := io.ReadAll(io.LimitReader(file, maxSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
		return raw, s.issueType(c), nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read request body: %w", err)
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		return nil, "", fmt.Errorf("file size exceeds limit of %d bytes", maxSize)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("image payload is required")
	}
	return raw, s.issueType(c), nil
}

func (s *Service) formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range []string{"image", "file"} {
		if file, header, err := c.Request.FormFile(field); err == nil {
			return file, header, nil
		}
	}
	return nil, nil, fmt.Errorf("image field is required")
}

func (s *Service) issueType(c *gin.Context) string {
	if v := c.Request.FormValue("issue_type"); v != "" {
		return v
	}
	return c.Query("issue_type")
}
