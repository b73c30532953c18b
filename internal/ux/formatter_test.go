package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/felixgeelhaar/boss/internal/errors"
)

type memberRow struct {
	Code   string `json:"member_code" yaml:"member_code"`
	Status string `json:"status" yaml:"status"`
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.KindValidation) {
				t.Errorf("NewFormatter() error kind = %v, want validation", errors.KindOf(err))
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(memberRow{Code: "M0001", Status: "active"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"member_code": "M0001"`) {
		t.Errorf("JSON output missing expected field: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format([]memberRow{{Code: "M0001"}, {Code: "M0002"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Count(buf.String(), "\n") > 1 {
		t.Errorf("Compact JSON should be single line, got: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(memberRow{Code: "M0001", Status: "suspended"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "member_code: M0001") || !strings.Contains(output, "status: suspended") {
		t.Errorf("YAML output missing expected fields: %s", output)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		contains []string
		wantErr  bool
	}{
		{
			name:     "string data",
			data:     "hello world",
			contains: []string{"hello world"},
		},
		{
			name: "table",
			data: Table{
				Head:   []string{"CODE", "STATUS"},
				Body:   [][]string{{"M0001", "active"}, {"M0002", "pending"}},
				Footer: "2 of 2",
			},
			contains: []string{"CODE", "STATUS", "M0001", "pending", "2 of 2"},
		},
		{
			name:     "empty table",
			data:     Table{Head: []string{"CODE"}},
			contains: []string{"No results."},
		},
		{
			name:     "key values",
			data:     KeyValues{{"Email", "admin@example.com"}, {"Role", "admin"}},
			contains: []string{"Email", "admin@example.com", "Role"},
		},
		{
			name:    "complex type without String method",
			data:    memberRow{Code: "M0001"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}

			err = formatter.Format(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Format() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("Format() output = %q, missing %q", output, want)
				}
			}
		})
	}
}
