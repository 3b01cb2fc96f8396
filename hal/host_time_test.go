//go:build !tinygo

package hal

import "testing"

func TestHostTimeStep(t *testing.T) {
	tm := newHostTime(50)
	if tm.TickHz() != 50 {
		t.Fatalf("TickHz() = %d, want 50", tm.TickHz())
	}

	tm.step(2) // no handler yet

	var seqs []uint64
	tm.SetTickHandler(func(seq uint64) { seqs = append(seqs, seq) })
	tm.step(3)

	want := []uint64{3, 4, 5}
	if len(seqs) != len(want) {
		t.Fatalf("seqs = %v, want %v", seqs, want)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Fatalf("seqs = %v, want %v", seqs, want)
		}
	}
}
