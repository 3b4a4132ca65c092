package ident

import "testing"

// --- DOI normalization ---

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "10.1000/example", "10.1000/example"},
		{"uppercase", "10.1000/EXAMPLE", "10.1000/example"},
		{"https prefix", "https://doi.org/10.1000/Example", "10.1000/example"},
		{"http dx prefix", "http://dx.doi.org/10.1000/example", "10.1000/example"},
		{"prefix case insensitive", "HTTPS://DOI.ORG/10.1000/example", "10.1000/example"},
		{"doi scheme", "doi:10.1000/example", "10.1000/example"},
		{"doi scheme uppercase", "DOI:10.1000/Example", "10.1000/example"},
		{"surrounding whitespace", "  10.1000/example  ", "10.1000/example"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.in); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDOIIdempotent(t *testing.T) {
	inputs := []string{
		"https://doi.org/10.1000/Example",
		"doi:10.5555/ABC.DEF/1234",
		"10.1000/example",
		"",
	}
	for _, in := range inputs {
		once := NormalizeDOI(in)
		twice := NormalizeDOI(once)
		if once != twice {
			t.Errorf("NormalizeDOI not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

// --- Title normalization ---

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Attention Is All You Need", "attention is all you need"},
		{"collapses whitespace", "deep   learning\t in\n medicine", "deep learning in medicine"},
		{"trims", "  spaced out  ", "spaced out"},
		{"nfkc fullwidth", "ＤＮＡ sequencing", "dna sequencing"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	in := "  Deep Learning:  Applications in Medicine  "
	once := NormalizeTitle(in)
	if twice := NormalizeTitle(once); once != twice {
		t.Errorf("NormalizeTitle not idempotent: %q != %q", once, twice)
	}
}

// --- Tokenization ---

func TestTitleTokens(t *testing.T) {
	got := TitleTokens("Deep learning: applications in medicine")
	want := []string{"deep", "learning", "applications", "in", "medicine"}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for _, token := range want {
		if _, ok := got[token]; !ok {
			t.Errorf("missing token %q in %v", token, got)
		}
	}
}

func TestTitleTokensEmpty(t *testing.T) {
	if got := TitleTokens(""); len(got) != 0 {
		t.Errorf("TitleTokens(\"\") = %v, want empty", got)
	}
	if got := TitleTokens("!!! --- !!!"); len(got) != 0 {
		t.Errorf("punctuation-only tokens = %v, want empty", got)
	}
}

// --- Jaccard ---

func set(tokens ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]struct{}
		want float64
	}{
		{"both empty", set(), set(), 1.0},
		{"one empty", set(), set("a"), 0.0},
		{"half overlap", set("alpha", "beta", "gamma"), set("alpha", "beta", "delta"), 0.5},
		{"identical", set("x", "y"), set("y", "x"), 1.0},
		{"disjoint", set("a"), set("b"), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("Jaccard = %f, want %f", got, tt.want)
			}
		})
	}
}

// --- DOI shape ---

func TestLooksLikeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10.5555/ABC.DEF/1234", true},
		{"10.1000/example", true},
		{"W2168236935", false},
		{"s2:649def34", false},
		{"10.1000", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeDOI(tt.in); got != tt.want {
			t.Errorf("LooksLikeDOI(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
