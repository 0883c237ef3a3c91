package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"alcyxob/fitness-coach/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	verr := &service.ValidationError{}
	verr.Add("setNumber", "must be at least 1")

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: plan", service.ErrNotFound), http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrActivePlanExists, http.StatusConflict},
		{service.ErrSessionTerminal, http.StatusConflict},
		{verr, http.StatusBadRequest},
		{service.ErrNoExercisesAvailable, http.StatusBadRequest},
		{fmt.Errorf("%w: timeout", service.ErrGenerationFailed), http.StatusBadGateway},
		{service.ErrInvalidGeneratedStructure, http.StatusBadGateway},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{service.ErrMediaUnavailable, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}
