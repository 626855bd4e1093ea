package authsdk

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusCreated}
		require.NoError(t, parseErrorResponse(resp, nil))
	})

	t.Run("structured body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusBadRequest}
		body := []byte(`{"error":"validation_error","error_description":"validation failed","fields":{"dob":"must be at least 13 years old"}}`)

		err := parseErrorResponse(resp, body)
		require.ErrorIs(t, err, ErrValidation)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "must be at least 13 years old", apiErr.Fields["dob"])
	})

	fallbacks := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, ErrorCodeTokenInvalid},
		{http.StatusTooManyRequests, ErrorCodeRateLimited},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusMethodNotAllowed, ErrorCodeInvalidRequest},
		{http.StatusBadGateway, ErrorCodeServerError},
	}
	for _, tt := range fallbacks {
		t.Run(fmt.Sprintf("fallback %d", tt.status), func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte("<html>oops</html>"))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.want, apiErr.Code)
			require.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("Is matches by code", func(t *testing.T) {
		err := fmt.Errorf("calling login: %w", ErrTokenExpired.WithDescription("jwt expired 3s ago"))
		require.ErrorIs(t, err, ErrTokenExpired)
		require.False(t, errors.Is(err, ErrTokenInvalid))
	})

	t.Run("WriteError round trips", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrValidation.WithFields(map[string]string{"email": "must be a valid email"}).WriteError(rec)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		err := parseErrorResponse(rec.Result(), rec.Body.Bytes())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "must be a valid email", apiErr.Fields["email"])
	})

	t.Run("With helpers copy", func(t *testing.T) {
		custom := ErrConflict.WithDescription("username taken")
		require.Equal(t, "user already exists", ErrConflict.Description)
		require.Equal(t, "username taken", custom.Description)
	})
}
