package imou

import (
	"encoding/json"
	"fmt"
	"time"
)

/*
 *   Request and response envelopes of the Imou Life OpenAPI.
 *
 *   Every call is a POST with a signed "system" header object; the
 *   response always carries a result code even when the HTTP status
 *   is 200, so decoding must inspect the embedded code before
 *   declaring success.
 */

const (
	apiVersion = "1.0"

	// the only code the vendor uses for success
	codeOK = "0"

	// access token expired or invalidated server-side
	codeTokenExpired = "TK1002"
)

type systemHeader struct {
	Ver   string `json:"ver"`
	AppID string `json:"appId"`
	Sign  string `json:"sign"`
	Time  int64  `json:"time"`
	Nonce string `json:"nonce"`
}

type requestEnvelope struct {
	System systemHeader `json:"system"`
	ID     string       `json:"id"`
	Params interface{}  `json:"params"`
}

type responseResult struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type responseEnvelope struct {
	Result responseResult `json:"result"`
	ID     string         `json:"id"`
}

// decodeEnvelope validates the vendor envelope and returns the embedded
// data payload, or a classified error. httpStatus is the transport-level
// status; the vendor reports most failures with HTTP 200 and a non-zero
// embedded code.
func decodeEnvelope(httpStatus int, body []byte) (json.RawMessage, error) {
	if httpStatus < 200 || httpStatus >= 300 {
		return nil, &TransportError{
			Op:  "api call",
			Err: fmt.Errorf("unexpected HTTP status %d: %s", httpStatus, truncate(body, 200)),
		}
	}

	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &InvalidResponseError{Reason: "malformed envelope", Body: truncate(body, 200)}
	}
	if env.Result.Code == "" {
		return nil, &InvalidResponseError{Reason: "result code missing", Body: truncate(body, 200)}
	}
	if env.Result.Code != codeOK {
		return nil, &APIError{Code: env.Result.Code, Message: env.Result.Msg}
	}

	return env.Result.Data, nil
}

// decodeData unmarshals an envelope data payload into out, converting
// decoding failures into InvalidResponseError.
func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil {
		return nil
	}
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &InvalidResponseError{Reason: err.Error(), Body: truncate(data, 200)}
	}
	return nil
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// Timestamp converts a vendor epoch-seconds value to UTC time.
func Timestamp(epoch int64) time.Time {
	return time.Unix(epoch, 0).UTC()
}
