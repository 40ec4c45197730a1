package particle

import "testing"

func TestSortedDoesNotAlias(t *testing.T) {
	in := []Type{Hadrons, EPlus}
	out := Sorted(in)
	if out[0] != Hadrons || out[1] != EPlus {
		t.Fatalf("unexpected order: %v", out)
	}
	in2 := []Type{MuMinus, Hadrons}
	out2 := Sorted(in2)
	if out2[0] != Hadrons || out2[1] != MuMinus {
		t.Fatalf("unexpected order: %v", out2)
	}
	out2[0] = Unknown
	if in2[1] != Hadrons {
		t.Fatalf("Sorted must not modify its input")
	}
}

func TestTauAndNeutrino(t *testing.T) {
	if !AnyTau(Hadrons, TauPlus) {
		t.Fatalf("expected tau")
	}
	if AnyTau(MuMinus, Hadrons) {
		t.Fatalf("unexpected tau")
	}
	if !NuTauBar.IsNeutrino() || TauMinus.IsNeutrino() {
		t.Fatalf("neutrino classification wrong")
	}
	if Type(99).String() != "Type(99)" || NuMu.String() != "NuMu" {
		t.Fatalf("String wrong")
	}
}
