package photo

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/photodex/internal/domain"
)

func TestIsPhoto(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"dog.jpg", true},
		{"dog.jpeg", true},
		{"cat.png", true},
		{"albums/jpg/readme", true},
		{"not_a_jpgfile.txt", true},
		{"pngs-are-cool.md", true},
		{"notes.txt", false},
		{"DOG.JPG", false},
		{"video.mp4", false},
		{"", false},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if got := IsPhoto(tc.key); got != tc.want {
				t.Errorf("IsPhoto(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo%2Bname.jpg", "photo+name.jpg"},
		{"my+holiday.jpg", "my holiday.jpg"},
		{"dir%2Fsub%2Fcat.png", "dir/sub/cat.png"},
		{"plain.jpg", "plain.jpg"},
	}
	for _, tc := range tests {
		got, err := DecodeKey(tc.in)
		if err != nil {
			t.Fatalf("DecodeKey(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("DecodeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeKey_Invalid(t *testing.T) {
	_, err := DecodeKey("bad%zzkey.jpg")
	if !errors.Is(err, domain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestParseNotification(t *testing.T) {
	raw := []byte(`{"Records":[
		{"s3":{"bucket":{"name":"photos"},"object":{"key":"photo%2Bname.jpg"}}},
		{"s3":{"bucket":{"name":"photos"},"object":{"key":"b.png"}}}
	]}`)

	events, err := ParseNotification(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0] != (UploadEvent{Bucket: "photos", ObjectKey: "photo+name.jpg"}) {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].ObjectKey != "b.png" {
		t.Errorf("unexpected second key: %q", events[1].ObjectKey)
	}
}

func TestParseNotification_Invalid(t *testing.T) {
	inputs := map[string]string{
		"not json":     `{`,
		"no records":   `{"Records":[]}`,
		"missing key":  `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{}}}]}`,
		"missing name": `{"Records":[{"s3":{"bucket":{},"object":{"key":"a.jpg"}}}]}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseNotification([]byte(in)); !errors.Is(err, domain.ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestMergeLabels(t *testing.T) {
	custom := "Pet,Outdoor"
	empty := ""
	tests := []struct {
		name     string
		detected []string
		meta     Metadata
		want     string
	}{
		{"detected then custom", []string{"dog", "cat"}, Metadata{CustomLabels: &custom}, "dog,cat,pet,outdoor"},
		{"no custom", []string{"Dog", "Cat"}, Metadata{}, "dog,cat"},
		{"empty custom", []string{"Dog"}, Metadata{CustomLabels: &empty}, "dog"},
		{"custom only", nil, Metadata{CustomLabels: &custom}, "pet,outdoor"},
		{"duplicates kept", []string{"dog", "Dog"}, Metadata{}, "dog,dog"},
		{"nothing", nil, Metadata{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MergeLabels(tc.detected, tc.meta); got != tc.want {
				t.Errorf("MergeLabels = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMetadataFromMap(t *testing.T) {
	m := MetadataFromMap(map[string]string{"customlabels": "Pet", "other": "x"})
	if m.CustomLabels == nil || *m.CustomLabels != "Pet" {
		t.Fatalf("expected custom labels Pet, got %v", m.CustomLabels)
	}
	if MetadataFromMap(map[string]string{"other": "x"}).CustomLabels != nil {
		t.Error("expected nil custom labels when key is absent")
	}
}

func TestNewDocument(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.FixedZone("EST", -5*3600))
	doc, err := NewDocument(UploadEvent{Bucket: "photos", ObjectKey: "dog.jpg"}, "dog", ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ObjectKey() != "dog.jpg" || doc.Bucket() != "photos" || doc.Labels() != "dog" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.CreatedTimestamp() != "2024-03-01T17:30:00.0000005Z" {
		t.Errorf("unexpected timestamp: %s", doc.CreatedTimestamp())
	}
}

func TestNewDocument_Validation(t *testing.T) {
	if _, err := NewDocument(UploadEvent{Bucket: "b"}, "", time.Now()); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewDocument(UploadEvent{ObjectKey: "a.jpg"}, "", time.Now()); err == nil {
		t.Error("expected error for empty bucket")
	}
}
