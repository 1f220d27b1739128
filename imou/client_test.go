package imou

import (
	"context"
	"crypto/md5" // #nosec -- verifying the vendor signing scheme
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	assert.False(t, c.Connected())

	err := c.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, c.Connected())
	assert.Equal(t, 1, f.loginCount())
}

func TestConnect_InvalidCredentials(t *testing.T) {
	f := newFakeVendor(t)
	f.loginCode = "OP1008"
	c := f.client()
	defer c.Close()

	err := c.Connect(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "want AuthError, got %T: %v", err, err)
	assert.Equal(t, "OP1008", authErr.Code)
	assert.False(t, c.Connected())
}

func TestLogin_OncePerSession(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceOnline", `{"onLine":"1","channels":[]}`)
	c := f.client()
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.DeviceOnline(ctx, "8L0DF93PAZ55F2A")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.loginCount(), "valid token must be reused across calls")
	assert.Equal(t, 5, f.callCount("deviceOnline"))
}

func TestLogin_SingleFlightUnderConcurrency(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceOnline", `{"onLine":"1"}`)
	c := f.client()
	defer c.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.DeviceOnline(context.Background(), "8L0DF93PAZ55F2A")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.loginCount(), "concurrent callers must share one login")
}

func TestCall_ExpiredTokenRetriedOnce(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceOnline", `{"onLine":"1"}`)
	c := f.client()
	defer c.Close()

	ctx := context.Background()
	_, err := c.DeviceOnline(ctx, "8L0DF93PAZ55F2A")
	require.NoError(t, err)
	require.Equal(t, 1, f.loginCount())

	// vendor revokes the token behind our back
	f.invalidateToken()

	res, err := c.DeviceOnline(ctx, "8L0DF93PAZ55F2A")
	require.NoError(t, err, "a stale token must be refreshed silently")
	assert.True(t, res.Online())
	assert.Equal(t, 2, f.loginCount(), "exactly one re-login")
	assert.Equal(t, 3, f.callCount("deviceOnline"), "rejected call plus one retry")
}

func TestCall_EmbeddedErrorIsNeverSuccess(t *testing.T) {
	f := newFakeVendor(t)
	f.fail("restartDevice", "DV1007")
	c := f.client()
	defer c.Close()

	err := c.RestartDevice(context.Background(), "8L0DF93PAZ55F2A")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "want APIError, got %T: %v", err, err)
	assert.Equal(t, "DV1007", apiErr.Code)
}

func TestCall_TransportError(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	f.srv.Close()

	_, err := c.DeviceList(context.Background())
	require.Error(t, err)

	var tErr *TransportError
	assert.True(t, errors.As(err, &tErr), "want TransportError, got %T: %v", err, err)

	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr), "network failure must not read as a credential rejection")
}

func TestCall_ContextTimeout(t *testing.T) {
	f := newFakeVendor(t)
	f.slow(200 * time.Millisecond)
	c := f.client()
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.DeviceList(ctx)
	require.Error(t, err)

	var tErr *TransportError
	require.True(t, errors.As(err, &tErr), "want TransportError, got %T: %v", err, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCall_TokenInjectedAndSigned(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceOnline", `{"onLine":"1"}`)
	c := f.client()
	defer c.Close()

	_, err := c.DeviceOnline(context.Background(), "8L0DF93PAZ55F2A")
	require.NoError(t, err)

	f.mu.Lock()
	env := f.lastRequest["deviceOnline"]
	f.mu.Unlock()

	params, ok := env.Params.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, f.currentToken(), params["token"])
	assert.Equal(t, "8L0DF93PAZ55F2A", params["deviceId"])

	assert.Equal(t, apiVersion, env.System.Ver)
	assert.Equal(t, "test-app-id", env.System.AppID)
	assert.NotEmpty(t, env.System.Nonce)
	assert.NotEmpty(t, env.ID)

	seed := fmt.Sprintf("time:%d,nonce:%s,appSecret:%s",
		env.System.Time, env.System.Nonce, "test-app-secret")
	want := fmt.Sprintf("%x", md5.Sum([]byte(seed))) // #nosec
	assert.Equal(t, want, env.System.Sign)
}

func TestToken_ImplementsTokenSource(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	tok, err := c.Token()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "tok-1", tok.AccessToken)
	assert.True(t, tok.Valid())

	// the returned token is a copy, not the client's own
	tok.AccessToken = "scribbled"
	tok2, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok2.AccessToken)
}

func TestTokenExpiryMargin(t *testing.T) {
	f := newFakeVendor(t)
	f.tokenTTL = 30 // below the refresh margin: never considered valid
	f.respond("deviceOnline", `{"onLine":"1"}`)
	c := f.client()
	defer c.Close()

	ctx := context.Background()
	_, err := c.DeviceOnline(ctx, "A")
	require.NoError(t, err)
	_, err = c.DeviceOnline(ctx, "A")
	require.NoError(t, err)

	assert.Equal(t, 2, f.loginCount(), "tokens inside the expiry margin must be refreshed")
}
