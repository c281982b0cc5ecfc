package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		page        int
		perPage     int
		total       int
		wantPages   int
	}{
		{"empty", 1, 10, 0, 0},
		{"partial page", 1, 10, 3, 1},
		{"exact pages", 2, 5, 10, 2},
		{"remainder", 3, 5, 11, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p := NewPagination(tc.page, tc.perPage, tc.total)
			assert.Equal(t, tc.page, p.Page)
			assert.Equal(t, tc.total, p.TotalItems)
			assert.Equal(t, tc.wantPages, p.TotalPages)
		})
	}
}

func TestCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.POST("/api/v1/rooms", func(c *gin.Context) {
		Created(c, "42", gin.H{"room": gin.H{"id": "42"}})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/rooms", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/rooms/42", w.Header().Get("Location"))

	var env Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Nil(t, env.Error)
	assert.NotEmpty(t, env.Metadata.RequestID)
}
