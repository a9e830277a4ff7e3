package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		status   int
		code     string
	}{
		{
			name:     "invalid criteria",
			err:      ranking.ErrInvalidCriteria,
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "wrapped missing candidates",
			err:      fmt.Errorf("parse form: %w", ranking.ErrNoCandidates),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "invalid factors",
			err:      fmt.Errorf("item %q: %w", "a", ranking.ErrInvalidFactors),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			category: CategoryTimeout,
			status:   http.StatusGatewayTimeout,
			code:     "TIMEOUT_ERROR",
		},
		{
			name:     "anything else",
			err:      errors.New("disk on fire"),
			category: CategoryInternal,
			status:   http.StatusInternalServerError,
			code:     "INTERNAL_ERROR",
		},
		{
			name:     "errbuilder invalid argument",
			err:      errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad"),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			code:     "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.Equal(t, tt.code, appErr.Code())
		})
	}

	assert.Nil(t, ToAppError(nil))
}

func TestToAppError_KeepsAppError(t *testing.T) {
	original := NewConfigurationError("missing key", nil)
	assert.Same(t, original, ToAppError(fmt.Errorf("wrap: %w", original)))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError(ranking.ErrNoCandidates.Error(), ranking.ErrNoCandidates)
	assert.Equal(t, "[VALIDATION_ERROR] at least one candidate is required", err.Error())
	assert.ErrorIs(t, err, ranking.ErrNoCandidates)
}

func TestConfigValidationError(t *testing.T) {
	first := errors.New("a")
	second := errors.New("b")

	err := NewConfigValidationError([]error{first, second})
	assert.Equal(t, CategoryConfiguration, err.Category)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestRespond(t *testing.T) {
	router := gin.New()
	router.GET("/bad", func(c *gin.Context) {
		c.Header("X-Request-ID", "req-1")
		Respond(c, ranking.ErrInvalidCriteria)
	})
	router.GET("/boom", func(c *gin.Context) {
		Respond(c, errors.New("secret internals"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Equal(t, ranking.ErrInvalidCriteria.Error(), body.Message)
	assert.Equal(t, "req-1", body.RequestID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
}

func TestRecoveryHandler(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryHandler())
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/attached", func(c *gin.Context) {
		_ = c.Error(ranking.ErrNoCandidates)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attached", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
