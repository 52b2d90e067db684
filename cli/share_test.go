// ABOUTME: Tests for sharing CLI flag parsing helpers
// ABOUTME: Covers target selection and comma-separated list parsing
package cli

import (
	"testing"

	"github.com/harperreed/packshare/models"
)

func TestParseTargetFlags(t *testing.T) {
	tests := []struct {
		name     string
		packID   int64
		songID   int64
		target   models.TargetType
		targetID int64
		wantErr  bool
	}{
		{name: "pack only", packID: 5, target: models.TargetPack, targetID: 5},
		{name: "song only", songID: 9, target: models.TargetSong, targetID: 9},
		{name: "both", packID: 5, songID: 9, wantErr: true},
		{name: "neither", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, targetID, err := parseTargetFlags(tt.packID, tt.songID)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if target != tt.target || targetID != tt.targetID {
				t.Errorf("Expected %s/%d, got %s/%d", tt.target, tt.targetID, target, targetID)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("101, 102,103")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 101 || ids[2] != 103 {
		t.Errorf("Unexpected IDs: %v", ids)
	}

	if _, err := parseIDList("101,abc"); err == nil {
		t.Error("Expected error for non-numeric ID")
	}

	ids, err = parseIDList("")
	if err != nil || ids != nil {
		t.Errorf("Empty input should yield nil, got %v (%v)", ids, err)
	}
}

func TestParseFieldList(t *testing.T) {
	fields := parseFieldList("drums, bass , ,vocals")
	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %v", fields)
	}
	if fields[1] != "bass" {
		t.Errorf("Expected trimmed 'bass', got %q", fields[1])
	}

	if parseFieldList("") != nil {
		t.Error("Empty input should yield nil")
	}
}
