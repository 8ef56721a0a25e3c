package normalize

import (
	"math"
	"testing"
)

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "lowercases", input: "Chef de Projet", expect: "chef de projet"},
		{name: "strips punctuation", input: "Chef   de Projet!", expect: "chef de projet"},
		{name: "collapses tabs and newlines", input: "\tIngénieur\n\nRéseau  ", expect: "ingénieur réseau"},
		{name: "keeps digits and underscore", input: "Technicien N2 (poste_A)", expect: "technicien n2 poste_a"},
		{name: "hyphen glues words", input: "Agent-Comptable", expect: "agentcomptable"},
		{name: "only punctuation", input: "?!.,", expect: ""},
		{name: "decomposed accents compose", input: "Inge\u0301nieur Re\u0301seau", expect: "ingénieur réseau"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Title(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestTitleIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Chef   de Projet!",
		"  DIRECTEUR  Général // Adjoint ",
		"Responsable QHSE - Énergie & Eau",
		"",
	}

	for _, in := range inputs {
		once := Title(in)
		if twice := Title(once); twice != once {
			t.Fatalf("normalize is not idempotent for %q: %q then %q", in, once, twice)
		}
	}

	if Title("Chef   de Projet!") != Title("chef de projet") {
		t.Fatalf("expected case, punctuation and whitespace insensitivity")
	}
}

func TestSignificantWords(t *testing.T) {
	t.Parallel()

	words := SignificantWords("chef de projet si")
	if len(words) != 2 || words[0] != "chef" || words[1] != "projet" {
		t.Fatalf("unexpected words: %v", words)
	}

	accented := SignificantWords("été ok")
	if len(accented) != 1 || accented[0] != "été" {
		t.Fatalf("expected rune-based length, got %v", accented)
	}
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   string
		expect float64
	}{
		{name: "three of four", a: "responsable maintenance reseau electrique", b: "responsable maintenance reseau hydraulique", expect: 0.75},
		{name: "one of four", a: "responsable maintenance reseau electrique", b: "responsable achats logistique transport", expect: 0.25},
		{name: "identical", a: "chef projet", b: "chef projet", expect: 1},
		{name: "short words ignored", a: "de la du", b: "de la du", expect: 0},
		{name: "uneven lengths use max", a: "chef projet", b: "chef projet digital transformation", expect: 0.5},
		{name: "empty", a: "", b: "chef", expect: 0},
		{name: "repeated words count once", a: "chef chef chef projet", b: "chef projet directeur adjoint", expect: 0.5},
		{name: "repeated words reversed", a: "chef projet directeur adjoint", b: "chef chef chef projet", expect: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlap(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestTitleCompositionInsensitive(t *testing.T) {
	t.Parallel()

	composed := Title("Ingénieur Électricien")
	decomposed := Title("Inge\u0301nieur E\u0301lectricien")
	if composed != decomposed {
		t.Fatalf("expected NFC and NFD titles to match, got %q and %q", composed, decomposed)
	}
}
