package main

import (
	"testing"

	"github.com/chrissnell/climatewatch/internal/retrieval"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		kind    retrieval.Kind
		wantErr bool
	}{
		{"single day", []string{"2023-05-29"}, retrieval.SingleDay, false},
		{"range", []string{"2023-05-29", "2023-05-31"}, retrieval.Range, false},
		{"bad date", []string{"29/05/2023"}, 0, true},
		{"too many", []string{"2023-05-29", "2023-05-30", "2023-05-31"}, 0, true},
		{"none", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseQuery(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseQuery(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err == nil && q.Kind != tt.kind {
				t.Errorf("parseQuery(%v).Kind = %v, expected %v", tt.args, q.Kind, tt.kind)
			}
		})
	}
}
