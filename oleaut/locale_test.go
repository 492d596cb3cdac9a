package oleaut

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/uiabridge/olevariant/ole"
)

func TestInvariantLocaleRoundTrips(t *testing.T) {
	l := InvariantLocale()

	if got := l.formatInt(-1234567); got != "-1234567" {
		t.Errorf("formatInt = %q", got)
	}
	if got := l.formatFloat(2.5); got != "2.5" {
		t.Errorf("formatFloat = %q", got)
	}
	if got := l.formatCurrency(15000); got != "1.5" {
		t.Errorf("formatCurrency = %q", got)
	}
	if got := l.formatBool(true); got != "True" {
		t.Errorf("formatBool = %q", got)
	}
	if got := l.Tag(); got != language.Und {
		t.Errorf("Tag = %v", got)
	}
}

func TestNamedLocaleGrouping(t *testing.T) {
	l := NewLocale(language.AmericanEnglish)

	if got := l.formatInt(1234567); got != "1,234,567" {
		t.Errorf("formatInt = %q", got)
	}
	if got := l.Tag(); got != language.AmericanEnglish {
		t.Errorf("Tag = %v", got)
	}
}

func TestLocaleDateForms(t *testing.T) {
	l := InvariantLocale()

	tests := []struct {
		days float64
		want string
	}{
		{0, "1899-12-30"},
		{2, "1900-01-01"},
		{1.5, "1899-12-31 12:00:00"},
	}
	for _, tt := range tests {
		if got := l.formatDate(tt.days); got != tt.want {
			t.Errorf("formatDate(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestEmulatorWithLocale(t *testing.T) {
	e := NewEmulator(WithLocale(language.AmericanEnglish))

	src := ole.NewRaw(ole.VTI4)
	src.SetI4(1234567)
	out, err := e.Convert(ole.VTBstr, &src)
	if err != nil {
		t.Fatal(err)
	}
	s, err := e.StringValue(out.Handle())
	if err != nil {
		t.Fatal(err)
	}
	if s != "1,234,567" {
		t.Errorf("string form = %q, want %q", s, "1,234,567")
	}
	e.FreeString(out.Handle())
	if n := e.LiveStrings(); n != 0 {
		t.Errorf("live strings = %d, want 0", n)
	}
}
