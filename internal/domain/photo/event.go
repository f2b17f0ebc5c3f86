package photo

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kailas-cloud/photodex/internal/domain"
)

// UploadEvent is a single object-created notification with the key already decoded.
type UploadEvent struct {
	Bucket    string
	ObjectKey string
}

// Notification is the storage event envelope delivered by the upload trigger.
type Notification struct {
	Records []NotificationRecord `json:"Records"`
}

// NotificationRecord is one entry of a storage event envelope.
type NotificationRecord struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// DecodeKey unescapes a key as delivered in upload notifications.
// Keys arrive form-encoded: "%2B" is a literal plus and "+" is a space.
func DecodeKey(encoded string) (string, error) {
	key, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("decode object key %q: %w: %w", encoded, domain.ErrInvalidEvent, err)
	}
	return key, nil
}

// ParseNotification decodes a raw envelope into upload events, in record order.
func ParseNotification(data []byte) ([]UploadEvent, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w: %w", domain.ErrInvalidEvent, err)
	}
	return n.Events()
}

// Events converts the envelope records into decoded upload events.
func (n Notification) Events() ([]UploadEvent, error) {
	if len(n.Records) == 0 {
		return nil, fmt.Errorf("notification has no records: %w", domain.ErrInvalidEvent)
	}

	events := make([]UploadEvent, 0, len(n.Records))
	for i, r := range n.Records {
		if r.S3.Bucket.Name == "" || r.S3.Object.Key == "" {
			return nil, fmt.Errorf("record %d: bucket and key are required: %w", i, domain.ErrInvalidEvent)
		}
		key, err := DecodeKey(r.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, UploadEvent{Bucket: r.S3.Bucket.Name, ObjectKey: key})
	}
	return events, nil
}
