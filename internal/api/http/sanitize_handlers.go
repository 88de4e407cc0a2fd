package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/linksan/internal/domain/sanitizer"
)

// jsonOverhead covers field names, quoting and escapes around each text
const jsonOverhead = 1024

// SanitizeRequest is the body of POST /sanitize
type SanitizeRequest struct {
	// Text may be empty but not absent
	Text *string `json:"text" binding:"required"`
}

// BatchRequest is the body of POST /sanitize/batch
type BatchRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

// SanitizeResponse reports one sanitized text
type SanitizeResponse struct {
	URL       string `json:"sanitized_url"`
	Removed   int    `json:"removed_count"`
	Unwrapped bool   `json:"unwrapped"`
	Message   string `json:"message"`
}

// BatchResponse reports every text of a batch in request order
type BatchResponse struct {
	Results      []SanitizeResponse `json:"results"`
	TotalRemoved int                `json:"total_removed"`
}

func newSanitizeResponse(res sanitizer.Result) SanitizeResponse {
	return SanitizeResponse{
		URL:       res.URL,
		Removed:   res.Removed,
		Unwrapped: res.Unwrapped,
		Message:   sanitizer.Feedback(res),
	}
}

// Sanitize cleans a single shared text
func (h *Handlers) Sanitize(c *gin.Context) {
	limitBody(c, h.textBodyLimit())

	var req SanitizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := validateText(*req.Text, "text", h.limits.MaxInput); err != nil {
		validationError(c, err)
		return
	}

	res := h.sanitizer.Sanitize(*req.Text)
	h.metrics.TrackResults(res)

	if res.Removed > 0 || res.Unwrapped {
		h.logger.Debug("Sanitized URL", append(logFields(c),
			zap.Int("removed", res.Removed),
			zap.Bool("unwrapped", res.Unwrapped),
		)...)
	}

	c.JSON(http.StatusOK, newSanitizeResponse(res))
}

// SanitizeBatch cleans several texts against one rule set snapshot
func (h *Handlers) SanitizeBatch(c *gin.Context) {
	limitBody(c, int64(h.limits.MaxBatch)*h.textBodyLimit())

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if len(req.Texts) > h.limits.MaxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("texts must not exceed %d items", h.limits.MaxBatch),
		})
		return
	}

	for i, text := range req.Texts {
		if err := validateText(text, fmt.Sprintf("texts[%d]", i), h.limits.MaxInput); err != nil {
			validationError(c, err)
			return
		}
	}

	results := h.sanitizer.SanitizeBatch(req.Texts)
	resp := BatchResponse{
		Results:      make([]SanitizeResponse, len(results)),
		TotalRemoved: h.metrics.TrackResults(results...),
	}
	for i, res := range results {
		resp.Results[i] = newSanitizeResponse(res)
	}

	c.JSON(http.StatusOK, resp)
}

// textBodyLimit bounds the encoded size of one text. Escaping can grow a
// character to six bytes.
func (h *Handlers) textBodyLimit() int64 {
	return int64(h.limits.MaxInput)*6 + jsonOverhead
}

func limitBody(c *gin.Context, limit int64) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
}

func bindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func validationError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errTooLong) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
