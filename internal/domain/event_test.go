package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeInsert(t *testing.T) {
	b := &Bookmark{
		ID:        "01JABCDEF",
		OwnerID:   "user-1",
		Title:     "Go blog",
		TargetURL: "https://go.dev/blog/",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := NewInsertEvent(b).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ev, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if ev.Kind != EventInsert {
		t.Errorf("Kind = %s, want %s", ev.Kind, EventInsert)
	}
	if ev.ID != b.ID {
		t.Errorf("ID = %s, want %s", ev.ID, b.ID)
	}
	if ev.Bookmark == nil || ev.Bookmark.TargetURL != b.TargetURL {
		t.Errorf("Bookmark not carried through: %+v", ev.Bookmark)
	}
}

func TestEncodeDecodeDelete(t *testing.T) {
	data, err := NewDeleteEvent("user-1", "01JABCDEF").Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ev, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if ev.Kind != EventDelete || ev.ID != "01JABCDEF" || ev.OwnerID != "user-1" {
		t.Errorf("decoded event = %+v", ev)
	}
}

func TestDecodeEventRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{nope"},
		{"empty object", "{}"},
		{"unknown kind", `{"kind":"update","owner_id":"u","id":"x"}`},
		{"insert without bookmark", `{"kind":"insert","owner_id":"u","id":"x"}`},
		{"insert with empty bookmark id", `{"kind":"insert","owner_id":"u","bookmark":{"id":""}}`},
		{"delete without id", `{"kind":"delete","owner_id":"u"}`},
		{"missing owner", `{"kind":"delete","id":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEvent([]byte(tt.payload)); !errors.Is(err, ErrMalformedEvent) {
				t.Errorf("DecodeEvent(%s) = %v, want ErrMalformedEvent", tt.payload, err)
			}
		})
	}
}

func TestDecodeInsertBackfillsID(t *testing.T) {
	payload := `{"kind":"insert","owner_id":"u","bookmark":{"id":"abc","owner_id":"u","title":"t","target_url":"https://x.dev"}}`

	ev, err := DecodeEvent([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if ev.ID != "abc" {
		t.Errorf("ID = %q, want backfill from bookmark id", ev.ID)
	}
}
