package snapshot

import (
	"encoding/json"
	"testing"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		raw     string
		want    int // 0 means nil
		wantErr bool
	}{
		{raw: ``},
		{raw: `null`},
		{raw: `1904`, want: 1904},
		{raw: `"1910"`, want: 1910},
		{raw: `"unknown"`},
		{raw: `"Unknown"`},
		{raw: `"sometime"`, wantErr: true},
		{raw: `1904.5`, wantErr: true},
		{raw: `-3`, wantErr: true},
		{raw: `[1904]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseYear(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseYear(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.want == 0 {
				if got != nil {
					t.Errorf("parseYear(%s) = %d, want nil", tt.raw, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseYear(%s) = %v, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: ``},
		{raw: `3`, want: 3},
		{raw: `"12"`, want: 12},
		{raw: `"March"`, want: 3},
		{raw: `"sept"`, want: 9},
		{raw: `"מרץ"`, want: 3},
		{raw: `"ניסן"`},
		{raw: `13`, wantErr: true},
		{raw: `0`, wantErr: true},
		{raw: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseMonth(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMonth(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.want == 0 {
				if got != nil {
					t.Errorf("parseMonth(%s) = %d, want nil", tt.raw, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseMonth(%s) = %v, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: ``, want: DefaultConfidence},
		{raw: `0.75`, want: 0.75},
		{raw: `"high"`, want: ConfidenceHigh},
		{raw: `"LOW"`, want: ConfidenceLow},
		{raw: `1.5`, wantErr: true},
		{raw: `"very"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseConfidence(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseConfidence(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseConfidence(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
