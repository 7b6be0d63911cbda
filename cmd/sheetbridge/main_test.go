// ABOUTME: Tests for CLI helpers.
// ABOUTME: Covers database path validation edge cases.

package main

import "testing"

func TestValidateAndCleanDBPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative path", "./sheetbridge.db", "sheetbridge.db", false},
		{"absolute path", "/var/lib/sheetbridge/history.db", "/var/lib/sheetbridge/history.db", false},
		{"surrounding whitespace", "  data.db  ", "data.db", false},
		{"empty", "", "", true},
		{"dot", ".", "", true},
		{"root", "/", "", true},
		{"traversal", "../../etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateAndCleanDBPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateAndCleanDBPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("validateAndCleanDBPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
