package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsKeepCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := BadGateway("game server error", cause)

	require.True(t, Is(err, StatusBadGateway))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "[BAD_GATEWAY] game server error: dial tcp: connection refused", err.Error())
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("approve: %w", FailedPrecondition("Only PENDING requests can be approved", nil))

	require.Equal(t, StatusFailedPrecondition, CodeOf(err))
	require.Equal(t, StatusUnknown, CodeOf(errors.New("plain")))
	require.Equal(t, CoreStatus(""), CodeOf(nil))

	base, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "Only PENDING requests can be approved", base.Message)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusValidationFailed:    http.StatusBadRequest,
		StatusNotFound:            http.StatusNotFound,
		StatusConflict:            http.StatusConflict,
		StatusFailedPrecondition:  http.StatusConflict,
		StatusUnprocessableEntity: http.StatusUnprocessableEntity,
		StatusBadGateway:          http.StatusBadGateway,
		StatusTooManyRequests:     http.StatusTooManyRequests,
		StatusInternal:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestJSONIncludesData(t *testing.T) {
	err := UnprocessableEntity("Event condition not met", nil, WithData(map[string]any{"success": false}))
	base, ok := As(err)
	require.True(t, ok)

	body := base.JSON().(map[string]interface{})["error"].(map[string]interface{})
	require.Equal(t, StatusUnprocessableEntity, body["code"])
	require.Equal(t, map[string]any{"success": false}, body["data"])
	require.NotContains(t, body, "details")
}
