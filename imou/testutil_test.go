package imou

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"
)

// fakeVendor emulates the vendor cloud: an accessToken endpoint plus
// canned per-endpoint envelopes. Every login issues a fresh token
// "tok-<n>" so tests can tell which token a request carried.
type fakeVendor struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	logins      int
	loginCode   string
	tokenTTL    int64
	delay       time.Duration
	calls       map[string]int
	data        map[string]string // endpoint -> data payload JSON
	errCodes    map[string]string // endpoint -> embedded error code
	lastRequest map[string]requestEnvelope
}

func newFakeVendor(t *testing.T) *fakeVendor {
	f := &fakeVendor{
		t:           t,
		loginCode:   "0",
		tokenTTL:    3600,
		calls:       map[string]int{},
		data:        map[string]string{},
		errCodes:    map[string]string{},
		lastRequest: map[string]requestEnvelope{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeVendor) client(opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(f.srv.URL)}, opts...)
	return New("test-app-id", "test-app-secret", opts...)
}

func (f *fakeVendor) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("tok-%d", f.logins)
}

// loginCount counts requests to the accessToken endpoint, successful or not.
func (f *fakeVendor) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls["accessToken"]
}

// invalidateToken makes the token held by clients stale, as if the
// vendor revoked it server-side.
func (f *fakeVendor) invalidateToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
}

// slow delays every response, for timeout tests.
func (f *fakeVendor) slow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *fakeVendor) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// respond sets the data payload returned for an endpoint.
func (f *fakeVendor) respond(endpoint, dataJSON string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[endpoint] = dataJSON
}

// fail makes an endpoint return an embedded error code.
func (f *fakeVendor) fail(endpoint, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errCodes[endpoint] = code
}

func (f *fakeVendor) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := path.Base(r.URL.Path)

	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	var env requestEnvelope
	var params map[string]interface{}
	env.Params = &params
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		f.t.Errorf("request to %s is not a valid envelope: %v", endpoint, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls[endpoint]++
	env.Params = params
	f.lastRequest[endpoint] = env

	if endpoint == "accessToken" {
		if f.loginCode != "0" {
			code := f.loginCode
			f.mu.Unlock()
			writeEnvelope(w, code, "invalid credentials", "")
			return
		}
		f.logins++
		token := fmt.Sprintf("tok-%d", f.logins)
		ttl := f.tokenTTL
		f.mu.Unlock()
		writeEnvelope(w, "0", "Operation is successful.",
			fmt.Sprintf(`{"accessToken":%q,"expireTime":%d}`, token, ttl))
		return
	}

	expected := fmt.Sprintf("tok-%d", f.logins)
	code, failing := f.errCodes[endpoint]
	data, ok := f.data[endpoint]
	f.mu.Unlock()

	if got, _ := params["token"].(string); got != expected {
		// stale token: the real service reports TK1002
		writeEnvelope(w, "TK1002", "token expired", "")
		return
	}

	if failing {
		writeEnvelope(w, code, "operation failed", "")
		return
	}
	if !ok {
		data = "{}"
	}
	writeEnvelope(w, "0", "Operation is successful.", data)
}

func writeEnvelope(w http.ResponseWriter, code, msg, dataJSON string) {
	if dataJSON == "" {
		dataJSON = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"result":{"code":%q,"msg":%q,"data":%s},"id":"test-id"}`, code, msg, dataJSON)
}
