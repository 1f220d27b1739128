package imou

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantData string
		wantErr  interface{}
	}{
		{
			name:     "success",
			status:   200,
			body:     `{"result":{"code":"0","msg":"Operation is successful.","data":{"token":"xyz"}},"id":"1"}`,
			wantData: `{"token":"xyz"}`,
		},
		{
			name:     "success without data",
			status:   200,
			body:     `{"result":{"code":"0","msg":"Operation is successful."},"id":"1"}`,
			wantData: "",
		},
		{
			name:    "embedded business error",
			status:  200,
			body:    `{"result":{"code":"DV1007","msg":"device offline"},"id":"1"}`,
			wantErr: &APIError{},
		},
		{
			name:    "token expired code",
			status:  200,
			body:    `{"result":{"code":"TK1002","msg":"token expired"},"id":"1"}`,
			wantErr: &APIError{},
		},
		{
			name:    "http error status",
			status:  502,
			body:    `<html>bad gateway</html>`,
			wantErr: &TransportError{},
		},
		{
			name:    "malformed body",
			status:  200,
			body:    `not json at all`,
			wantErr: &InvalidResponseError{},
		},
		{
			name:    "missing result code",
			status:  200,
			body:    `{"id":"1"}`,
			wantErr: &InvalidResponseError{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := decodeEnvelope(tc.status, []byte(tc.body))

			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tc.wantData, string(data))
				return
			}

			require.Error(t, err)
			switch tc.wantErr.(type) {
			case *APIError:
				var e *APIError
				assert.True(t, errors.As(err, &e), "want APIError, got %T", err)
			case *TransportError:
				var e *TransportError
				assert.True(t, errors.As(err, &e), "want TransportError, got %T", err)
			case *InvalidResponseError:
				var e *InvalidResponseError
				assert.True(t, errors.As(err, &e), "want InvalidResponseError, got %T", err)
			}
		})
	}
}

func TestDecodeEnvelope_ErrorDetails(t *testing.T) {
	_, err := decodeEnvelope(200, []byte(`{"result":{"code":"OP1009","msg":"no permission"},"id":"1"}`))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "OP1009", apiErr.Code)
	assert.Equal(t, "no permission", apiErr.Message)
	assert.Contains(t, err.Error(), "OP1009")
}

func TestDecodeData(t *testing.T) {
	var out struct {
		OnLine string `json:"onLine"`
	}

	require.NoError(t, decodeData([]byte(`{"onLine":"1"}`), &out))
	assert.Equal(t, "1", out.OnLine)

	// nil out means the caller ignores the payload
	require.NoError(t, decodeData([]byte(`{"whatever":true}`), nil))

	// empty payload decodes as the zero value
	out.OnLine = ""
	require.NoError(t, decodeData(nil, &out))
	assert.Equal(t, "", out.OnLine)

	err := decodeData([]byte(`["unexpected"]`), &out)
	var invErr *InvalidResponseError
	assert.True(t, errors.As(err, &invErr), "want InvalidResponseError, got %T", err)
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: "deviceBaseList", Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "deviceBaseList")
}

func TestTimestamp(t *testing.T) {
	got := Timestamp(1664127393)
	assert.Equal(t, time.Date(2022, 9, 25, 17, 36, 33, 0, time.UTC), got)
}
