package normalize

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"appendicectomie":       "appendicectomie",
		"arthrodèse cervicale":  "arthrodese cervicale",
		"cœlioscopie":           "cœlioscopie", // œ is a ligature, not a combining mark
		"exérèse à ciel ouvert": "exerese a ciel ouvert",
		"":                      "",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestText(t *testing.T) {
	cases := map[string]string{
		"Arthrodèse   cervicale":           "arthrodese cervicale",
		"  Craniotomie, tumeur (lobe)":     "craniotomie tumeur lobe",
		"appendicectomie, par cœlioscopie": "appendicectomie par coelioscopie",
		"ICR: 349,61":                      "icr 349 61",
		"   ":                              "",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Arthrodèse cervicale antérieure",
		"appendicectomie, par cœlioscopie",
		"Exérèse à ciel ouvert !",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		minLen int
		want   []string
	}{
		{"drops short words", "exérèse de la tumeur", 3, []string{"exerese", "tumeur"}},
		{"keeps single short word", "os", 3, []string{"os"}},
		{"empty query", "   ", 3, nil},
		{"minLen disabled", "exérèse de la tumeur", 1, []string{"exerese", "de", "la", "tumeur"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in, tt.minLen)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q, %d) = %v, want %v", tt.in, tt.minLen, got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	cases := map[string]string{
		" hhfa001 ": "HHFA001",
		"HHFA-001":  "HHFA001",
		"":          "",
	}
	for in, want := range cases {
		if got := Code(in); got != want {
			t.Errorf("Code(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidCode(t *testing.T) {
	valid := []string{"HHFA001", "NFEP002"}
	invalid := []string{"HHFA01", "1234567", "HHFA0011", "hhfa001", ""}
	for _, c := range valid {
		if !ValidCode(c) {
			t.Errorf("ValidCode(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if ValidCode(c) {
			t.Errorf("ValidCode(%q) = true, want false", c)
		}
	}
}
