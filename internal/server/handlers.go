/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package server

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mpromonet/tflite-classifier/internal/classify"
	"github.com/mpromonet/tflite-classifier/internal/log"
	"github.com/mpromonet/tflite-classifier/internal/pipeline"
)

// ClassifyResponse is the body returned for a successful classification.
type ClassifyResponse struct {
	RequestID string `json:"request_id"`
	*classify.Prediction
	Display string `json:"display"`
}

// ErrorResponse is the body returned when a request fails.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": s.classifier.Labels().Len()})
}

// classifyUpload handles a multipart upload in the "image" field.
func (s *Server) classifyUpload(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		if tooLarge(err) {
			s.failTooLarge(c, err)
			return
		}
		s.fail(c, http.StatusBadRequest, "invalid_request", err, "no image file provided, use 'image' as the form field name")
		return
	}
	file, err := header.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", err, "cannot open uploaded file")
		return
	}
	defer file.Close()

	s.log.WithFields(log.Fields{
		log.RequestIDKey: c.GetString(log.RequestIDKey),
		"file_name":      header.Filename,
		"file_size":      header.Size,
	}).Debug("received upload")

	img, err := classify.DecodeImage(file)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_image", err, "failed to decode image")
		return
	}
	s.respond(c, img)
}

// classifyBody handles raw image bytes in the request body.
func (s *Server) classifyBody(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			s.failTooLarge(c, err)
			return
		}
		s.fail(c, http.StatusBadRequest, "invalid_request", err, "failed to read request body")
		return
	}
	img, err := classify.DecodeImageBytes(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_image", err, "failed to decode image")
		return
	}
	s.respond(c, img)
}

// classifyCamera captures a frame from the configured camera.
func (s *Server) classifyCamera(c *gin.Context) {
	if s.camera == nil {
		s.fail(c, http.StatusNotFound, "no_camera", errors.New("camera not configured"), "no camera configured")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Timeout)
	defer cancel()
	img, err := s.camera.Capture(ctx)
	if err != nil {
		s.fail(c, http.StatusServiceUnavailable, "camera_unavailable", err, "failed to capture image")
		return
	}
	s.respond(c, img)
}

// limitBody caps the request body at MaxUpload. Requests that announce a
// larger body are rejected before anything is read.
func (s *Server) limitBody(c *gin.Context) bool {
	if c.Request.ContentLength > s.cfg.MaxUpload {
		s.failTooLarge(c, errors.Errorf("content length %d exceeds %d", c.Request.ContentLength, s.cfg.MaxUpload))
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUpload)
	return true
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) failTooLarge(c *gin.Context, err error) {
	s.fail(c, http.StatusRequestEntityTooLarge, "too_large",
		err, fmt.Sprintf("image exceeds the %d byte upload limit", s.cfg.MaxUpload))
}

func (s *Server) respond(c *gin.Context, img image.Image) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Timeout)
	defer cancel()

	prediction, err := s.classifier.Do(ctx, img)
	if err != nil {
		status, code := classifyError(err)
		s.fail(c, status, code, err, "classification failed")
		return
	}

	s.log.WithFields(log.Fields{
		log.RequestIDKey: c.GetString(log.RequestIDKey),
		"class":          prediction.Index,
		"score":          prediction.Score,
	}).Info(prediction.String())

	c.JSON(http.StatusOK, ClassifyResponse{
		RequestID:  c.GetString(log.RequestIDKey),
		Prediction: prediction,
		Display:    prediction.String(),
	})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, classify.ErrNoImage), errors.Is(err, classify.ErrDecode):
		return http.StatusBadRequest, "invalid_image"
	case errors.Is(err, classify.ErrEmptyScores):
		return http.StatusUnprocessableEntity, "invalid_scores"
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, pipeline.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "inference_failed"
}

func (s *Server) fail(c *gin.Context, status int, code string, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(log.RequestIDKey),
	})
}
