package tuning

import (
	"errors"
	"testing"
)

func TestByID(t *testing.T) {
	for _, want := range All() {
		got, err := ByID(want.ID)
		if err != nil {
			t.Fatalf("ByID(%q) error = %v", want.ID, err)
		}
		if got != want {
			t.Fatalf("ByID(%q) = %+v, want %+v", want.ID, got, want)
		}
	}

	if got, err := ByID("  Drop-D "); err != nil || got.ID != DropD.ID {
		t.Fatalf("ByID normalisation: got %q, %v", got.ID, err)
	}

	if _, err := ByID("banjo"); !errors.Is(err, ErrUnknownTuning) {
		t.Fatalf("ByID(banjo) error = %v, want ErrUnknownTuning", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0] = Tuning{ID: "mutated"}
	if All()[0].ID != Standard.ID {
		t.Fatal("All() exposes internal slice")
	}
}

func TestTuningsAscend(t *testing.T) {
	for _, tn := range All() {
		for i := 1; i < StringCount; i++ {
			if tn.Strings[i].Frequency <= tn.Strings[i-1].Frequency {
				t.Fatalf("%s: string %d (%v) not above string %d (%v)",
					tn.ID, i, tn.Strings[i].Frequency, i-1, tn.Strings[i-1].Frequency)
			}
		}
	}
}

func TestStandardTargets(t *testing.T) {
	want := []float64{82.41, 110, 146.83, 196, 246.94, 329.63}
	got := Standard.Targets()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Targets()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
