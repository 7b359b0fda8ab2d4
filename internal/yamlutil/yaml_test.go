package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-md2cv/internal/yamlutil"
)

type header struct {
	Text string `yaml:"text"`
	Link string `yaml:"link"`
}

type resumeMeta struct {
	Name   string   `yaml:"name"`
	Header []header `yaml:"header"`
}

// ---------------------------------------------------------------------------
// TestDecodeStrict - Config documents reject unknown keys
// ---------------------------------------------------------------------------

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    resumeMeta
		wantErr error
	}{
		{name: "known keys", data: "name: Ada\nheader:\n  - text: London\n", want: resumeMeta{Name: "Ada", Header: []header{{Text: "London"}}}},
		{name: "empty", data: ""},
		{name: "unknown key", data: "name: Ada\nphoto: me.png\n", wantErr: yamlutil.ErrSyntax},
		{name: "wrong type", data: "header: London\n", wantErr: yamlutil.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got resumeMeta
			err := yamlutil.DecodeStrict([]byte(tt.data), &got)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeStrict() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (got.Name != tt.want.Name || len(got.Header) != len(tt.want.Header)) {
				t.Errorf("DecodeStrict() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeStrict_ErrorPosition(t *testing.T) {
	t.Parallel()

	var got resumeMeta
	err := yamlutil.DecodeStrict([]byte("name: Ada\nphoto: me.png\n"), &got)
	if err == nil {
		t.Fatal("DecodeStrict() should reject the unknown key")
	}
	if msg := err.Error(); !strings.Contains(msg, "photo") {
		t.Errorf("error = %q, want it to name the key", msg)
	}
}

// ---------------------------------------------------------------------------
// TestDecodeMapping - Front matter documents
// ---------------------------------------------------------------------------

func TestDecodeMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantEmpty bool
		wantName  string
		wantErr   error
	}{
		{name: "mapping", data: "name: Ada\n", wantName: "Ada"},
		{name: "unknown keys ignored", data: "name: Ada\ntheme: dark\n", wantName: "Ada"},
		{name: "unicode", data: "name: José Álvarez\n", wantName: "José Álvarez"},
		{name: "empty", data: "", wantEmpty: true},
		{name: "comment only", data: "# nothing here\n", wantEmpty: true},
		{name: "whitespace only", data: "  \n\n", wantEmpty: true},
		{name: "sequence", data: "- a\n- b\n", wantErr: yamlutil.ErrNotMapping},
		{name: "scalar", data: "just text\n", wantErr: yamlutil.ErrNotMapping},
		{name: "unclosed flow", data: "name: [unclosed\n", wantErr: yamlutil.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got resumeMeta
			empty, err := yamlutil.DecodeMapping([]byte(tt.data), &got)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeMapping() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if empty != tt.wantEmpty {
				t.Errorf("empty = %v, want %v", empty, tt.wantEmpty)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestInputChecks - Destination and size guards
// ---------------------------------------------------------------------------

func TestInputChecks(t *testing.T) {
	t.Parallel()

	if err := yamlutil.DecodeStrict([]byte("name: x"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("DecodeStrict(nil) error = %v, want ErrNilDestination", err)
	}
	if _, err := yamlutil.DecodeMapping([]byte("name: x"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("DecodeMapping(nil) error = %v, want ErrNilDestination", err)
	}
}

// TestMaxInputSize lowers the package limit, so it runs serially.
func TestMaxInputSize(t *testing.T) {
	orig := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = orig })
	yamlutil.MaxInputSize = 16

	data := []byte("name: " + strings.Repeat("a", 32))
	var got resumeMeta
	if err := yamlutil.DecodeStrict(data, &got); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("DecodeStrict() error = %v, want ErrInputTooLarge", err)
	}
	if _, err := yamlutil.DecodeMapping(data, &got); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("DecodeMapping() error = %v, want ErrInputTooLarge", err)
	}
}
