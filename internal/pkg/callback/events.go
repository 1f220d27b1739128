package callback

import (
	"encoding/json"
	"time"
)

// Event is one push notification delivered by the Imou cloud to the
// registered callback URL. Alarm events carry the alarm fields; device
// status events carry Status.
type Event struct {
	MsgType   string `json:"msgType"`
	DeviceID  string `json:"deviceId"`
	ChannelID string `json:"channelId,omitempty"`
	AlarmID   string `json:"alarmId,omitempty"`
	Time      int64  `json:"time,omitempty"`
	PicURL    string `json:"picUrl,omitempty"`
	Status    string `json:"status,omitempty"`

	// Received is stamped locally when the message arrives.
	Received time.Time `json:"received"`

	// Raw preserves the vendor payload verbatim for consumers that
	// need fields we do not map.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// parseEvent decodes a vendor push message body.
func parseEvent(body []byte, now time.Time) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}

	ev.Received = now
	ev.Raw = json.RawMessage(body)
	return &ev, nil
}
