package mapping

import (
	"errors"
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		model   string
		want    Family
		wantErr bool
	}{
		{model: "AQL_RS4", want: FamilyLivePremier},
		{model: "aql_c", want: FamilyLivePremier},
		{model: "ZENITH_200", want: FamilyLivePremier},
		{model: "PULSE_4K", want: FamilyMidra},
		{model: " EIKOS_4K ", want: FamilyMidra},
		{model: "QUICKVU_4K", want: FamilyMidra},
		{model: "SMARTMATRIX_ULTRA", want: FamilyMidra},
		{model: "", wantErr: true},
		{model: "TOASTER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := Identify(tt.model)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFamily) {
					t.Errorf("Identify(%q) error = %v, want ErrUnknownFamily", tt.model, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Identify(%q) error = %v", tt.model, err)
			}
			if got != tt.want {
				t.Errorf("Identify(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestParseFamily(t *testing.T) {
	if f, err := ParseFamily("Midra"); err != nil || f != FamilyMidra {
		t.Errorf("ParseFamily(Midra) = %q, %v", f, err)
	}
	if _, err := ParseFamily("other"); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("ParseFamily(other) error = %v, want ErrUnknownFamily", err)
	}
	if _, err := TableFor("other"); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("TableFor(other) error = %v, want ErrUnknownFamily", err)
	}
}
