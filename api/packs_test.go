// ABOUTME: Tests for pack, song, and user lookup calls
// ABOUTME: Covers song listing defaults and username resolution
package api

import (
	"context"
	"net/http"
	"testing"
)

func TestListPackSongsFillsPackID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"songs": [
			{"id": 101, "title": "Hammer Down"},
			{"id": 102, "title": "Night Drive", "pack_id": 1}
		]}`))
	}))

	songs, err := client.ListPackSongs(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListPackSongs failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	for _, song := range songs {
		if song.PackID != 1 {
			t.Errorf("song %d pack id = %d, want 1", song.ID, song.PackID)
		}
	}
}

func TestResolveUsername(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"users": [
			{"id": 1, "username": "owner"},
			{"id": 7, "username": "Kay"}
		]}`))
	}))

	user, err := client.ResolveUsername(context.Background(), "kay")
	if err != nil {
		t.Fatalf("ResolveUsername failed: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("user id = %d, want 7", user.ID)
	}

	if _, err := client.ResolveUsername(context.Background(), "stranger"); err == nil {
		t.Error("expected error for unknown username")
	}
}
