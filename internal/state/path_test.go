package state

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"/", []string{}},
		{"a/b/c", []string{"a", "b", "c"}},
		{"/a//b/", []string{"a", "b"}},
	}

	for _, tt := range tests {
		got := Split(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		name  string
		parts []any
		want  any
	}{
		{
			name:  "strings keep single leading and trailing separator",
			parts: []any{"/device/", "/screenList/", "items/"},
			want:  "/device/screenList/items/",
		},
		{
			name:  "strings without separators",
			parts: []any{"device", "screenList"},
			want:  "device/screenList",
		},
		{
			name:  "mixed fragments become segments",
			parts: []any{"/device/screenList/", []string{"items", "S1"}},
			want:  []string{"device", "screenList", "items", "S1"},
		},
		{
			name:  "numbers become single segments",
			parts: []any{[]string{"bank"}, 12},
			want:  []string{"bank", "12"},
		},
		{
			name:  "root only",
			parts: []any{"/"},
			want:  "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Concat(tt.parts...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Concat(%v) = %#v, want %#v", tt.parts, got, tt.want)
			}
		})
	}
}

func TestParsePointer(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "", want: []string{}},
		{in: "/a/b/c", want: []string{"a", "b", "c"}},
		{in: "/a~1b/c~0d", want: []string{"a/b", "c~d"}},
		{in: "/items/", want: []string{"items", ""}},
		{in: "a/b", wantErr: true},
		{in: "/bad~2", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePointer(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPointer) {
				t.Errorf("ParsePointer(%q) error = %v, want ErrInvalidPointer", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePointer(%q) error = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePointer(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back := FormatPointer(got); tt.in != "" && back != tt.in {
			t.Errorf("FormatPointer(%v) = %q, want %q", got, back, tt.in)
		}
	}
}
