package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brandai/backend/internal/evaluation"
	"brandai/backend/internal/failure"
)

func (s *Server) handleEvaluate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderFailure(c, fmt.Errorf("upload exceeds %d bytes: %w", s.maxUploadBytes, err))
			return
		}
		s.renderFailure(c, failure.Invalid("multipart field \"image\" is required"))
		return
	}

	upload, err := readUpload(header)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"request_id":   c.GetString("request_id"),
		"filename":     upload.Filename,
		"content_type": upload.ContentType,
		"bytes":        len(upload.Data),
	}).Info("evaluation request received")

	result, err := s.orchestrator.Evaluate(c.Request.Context(), upload)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRegenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderFailure(c, failure.Invalid("invalid regeneration request: %v", err))
		return
	}

	uri, err := s.orchestrator.Regenerate(c.Request.Context(), req.RefinementPlan)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, RegenerateResponse{RegeneratedImageURL: uri})
}

func readUpload(header *multipart.FileHeader) (evaluation.Upload, error) {
	if header == nil {
		return evaluation.Upload{}, failure.Invalid("file header is nil")
	}
	src, err := header.Open()
	if err != nil {
		return evaluation.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return evaluation.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return evaluation.Upload{}, failure.Invalid("uploaded image %q is empty", header.Filename)
	}
	return evaluation.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
