package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAbortAssignErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{service.ErrAssignmentInputMissing, http.StatusBadRequest},
		{service.ErrNoLinks, http.StatusBadRequest},
		{service.ErrNoValidRows, http.StatusBadRequest},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrAssignmentConflict, http.StatusConflict},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	h := &AdminHandler{}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.abortAssignError(c, tc.err)
		require.Equal(t, tc.status, w.Code, "status for %v", tc.err)
	}
}
