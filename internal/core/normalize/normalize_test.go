package normalize

import "testing"

func TestFold(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ascii identity", "Teresina", "Teresina"},
		{"precomposed accents", "São Paulo", "Sao Paulo"},
		{"combining accent", "Goiás", "Goias"},
		{"cedilla", "Maçaranduba", "Macaranduba"},
		{"collapse and trim", "  Rio \t de\n\nJaneiro  ", "Rio de Janeiro"},
		{"control bytes", "Bel\x00em\x07", "Belem"},
		{"invalid utf8", string([]byte{0xff, 'P', 'a', 'r', 0x80, 'a'}), "Para"},
		{"zero width", "Cuia\u200bba", "Cuiaba"},
		{"fullwidth", "\uff33\uff30", "SP"},
		{"case kept", "ESPAÇO da Sorte", "ESPACO da Sorte"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := Fold(c.in); got != c.want {
				t.Fatalf("Fold(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"SÃO JOSÉ DOS CAMPOS", "Sao Jose Dos Campos"},
		{"teresina", "Teresina"},
		{"  caminhão da sorte ", "Caminhao Da Sorte"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Title(c.in); got != c.want {
			t.Fatalf("Title(%q) = %q, want %q", c.in, got, c.want)
		}
		if again := Title(Title(c.in)); again != c.want {
			t.Fatalf("Title not idempotent for %q: %q", c.in, again)
		}
	}
}

func TestKey(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"n/a", "N/A"},
		{"Não informado", "NAO INFORMADO"},
		{" sem   informação ", "SEM INFORMACAO"},
		{"Piauí", "PIAUI"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Key(c.in); got != c.want {
			t.Fatalf("Key(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"", ""},
		{"a\tb\nc", "a b c"},
		{"x\x00y\x1bz\x7f", "xyz"},
		{"R$\u0085 10", "R$ 10"},
		{"ok", "ok"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
