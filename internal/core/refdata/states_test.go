package refdata

import (
	"strings"
	"testing"
)

func TestTableShape(t *testing.T) {
	t.Parallel()
	all := All()
	if len(all) != 27 || Len() != 27 {
		t.Fatalf("expected 27 units, got %d", len(all))
	}
	regions := map[string]int{}
	for i, s := range all {
		if len(s.Code) != 2 || strings.ToUpper(s.Code) != s.Code {
			t.Fatalf("bad code %q", s.Code)
		}
		if i > 0 && all[i-1].Code >= s.Code {
			t.Fatalf("All not sorted at %d: %s >= %s", i, all[i-1].Code, s.Code)
		}
		regions[s.Region]++
	}
	want := map[string]int{Norte: 7, Nordeste: 9, CentroOeste: 4, Sudeste: 4, Sul: 3}
	for r, n := range want {
		if regions[r] != n {
			t.Fatalf("region %s has %d units, want %d", r, regions[r], n)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()
	a := All()
	a[0].Name = "changed"
	if s, _ := Lookup(a[0].Code); s.Name == "changed" {
		t.Fatalf("All must not expose the backing table")
	}
}

func TestLookups(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code   string
		ok     bool
		name   string
		region string
	}{
		{"SP", true, "Sao Paulo", Sudeste},
		{"DF", true, "Distrito Federal", CentroOeste},
		{"RR", true, "Roraima", Norte},
		{"sp", false, "", ""},
		{"XX", false, "", ""},
		{"", false, "", ""},
	}
	for _, c := range cases {
		s, ok := Lookup(c.code)
		if ok != c.ok || s.Name != c.name || s.Region != c.region || Valid(c.code) != c.ok {
			t.Fatalf("Lookup(%q) = %+v,%v", c.code, s, ok)
		}
	}

	if s, ok := ByName("MATO GROSSO DO SUL"); !ok || s.Code != "MS" {
		t.Fatalf("ByName MS = %+v,%v", s, ok)
	}
	if s, ok := ByName("MATO GROSSO"); !ok || s.Code != "MT" {
		t.Fatalf("ByName MT = %+v,%v", s, ok)
	}
	if _, ok := ByName("Sao Paulo"); ok {
		t.Fatalf("ByName expects uppercase keys")
	}
}
