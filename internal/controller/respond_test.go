package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/saxenaaman628/org-voting-system/internal/models"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", &services.ValidationError{Reasons: []string{services.MsgNoOptions}}, http.StatusBadRequest, services.MsgNoOptions},
		{"ledger conflict", services.ErrAlreadyVoted, http.StatusConflict, services.MsgAlreadyVoted},
		{"not found", fmt.Errorf("lookup: %w", services.ErrElectionNotFound), http.StatusNotFound, "election not found"},
		{"forbidden", services.ErrNotPermitted, http.StatusForbidden, "not permitted"},
		{"has votes", services.ErrElectionHasVotes, http.StatusConflict, "purge"},
		{"input", &services.InputError{Err: models.ErrInvalidWindow}, http.StatusBadRequest, "end date"},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tc.err)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
			assert.NotContains(t, w.Body.String(), "db exploded")
		})
	}
}
