package replaywindow

import "testing"

func TestFirstSequenceAlwaysAccepted(t *testing.T) {
	w := New()
	if !w.Check(0) {
		t.Fatal("first sequence number must be accepted")
	}
	w.Update(0)
	if w.RightEdge() != 0 {
		t.Fatalf("right edge = %d, want 0", w.RightEdge())
	}
}

func TestDuplicateIsRejected(t *testing.T) {
	w := New()
	w.Check(5)
	w.Update(5)
	if w.Check(5) {
		t.Fatal("replaying the same sequence number twice must be rejected the second time")
	}
}

func TestOutOfWindowRejected(t *testing.T) {
	w := New()
	w.Check(100)
	w.Update(100)
	if w.Check(100 - 64) {
		t.Fatal("sequence <= rightEdge-64 must be rejected")
	}
}

func TestInWindowAcceptedOnce(t *testing.T) {
	w := New()
	w.Check(100)
	w.Update(100)
	if !w.Check(100 - 63) {
		t.Fatal("sequence at rightEdge-63 should be accepted the first time")
	}
	w.Update(100 - 63)
	if w.Check(100 - 63) {
		t.Fatal("the same in-window sequence must be rejected the second time")
	}
}

// TestCheckDoesNotMutate proves Check alone never commits a sequence
// number: calling it repeatedly for the same never-Update-d seq keeps
// reporting it as new, the way a MAC-failing record must not be able
// to advance the window.
func TestCheckDoesNotMutate(t *testing.T) {
	w := New()
	w.Check(0)
	w.Update(0)

	if !w.Check(50) {
		t.Fatal("seq=50 should read as new before Update commits it")
	}
	if !w.Check(50) {
		t.Fatal("Check must be idempotent and not itself commit seq=50")
	}
	if w.RightEdge() != 0 {
		t.Fatalf("right edge = %d, want 0 (Check must not advance it)", w.RightEdge())
	}
}

// TestSlidingWindowScenarioS3 reproduces spec §8 scenario S3 exactly.
func TestSlidingWindowScenarioS3(t *testing.T) {
	w := &Window{rightEdge: 10, bitmap: ^uint64(0), seenAny: true}

	if w.Check(3) {
		t.Fatal("seq=3 should be dropped (bit already set in the all-ones seed window)")
	}

	if !w.Check(11) {
		t.Fatal("seq=11 should be accepted, advancing the window")
	}
	w.Update(11)
	if w.RightEdge() != 11 {
		t.Fatalf("right edge = %d, want 11", w.RightEdge())
	}

	if w.Check(11) {
		t.Fatal("seq=11 replayed must be dropped")
	}

	if w.Check(9) {
		t.Fatal("seq=9 whose bit was already set (from the all-ones seed) must be dropped")
	}
}

func TestWindowAdvanceBeyond64ClearsBitmap(t *testing.T) {
	w := New()
	w.Check(0)
	w.Update(0)
	w.Check(1000)
	w.Update(1000)
	if w.Check(1000 - 64) {
		t.Fatal("after a large jump, anything 64 or more behind the new right edge must be rejected")
	}
	if !w.Check(999) {
		t.Fatal("after a large jump, the bits behind the new right edge must be cleared")
	}
}

// TestUpdateWithoutPriorCheckStillAdvances documents that Update
// trusts its caller: RecordProtocol only calls it once MAC
// verification has succeeded for a seq Check already approved, so
// Update itself performs no re-validation.
func TestUpdateWithoutPriorCheckStillAdvances(t *testing.T) {
	w := New()
	w.Update(42)
	if w.RightEdge() != 42 {
		t.Fatalf("right edge = %d, want 42", w.RightEdge())
	}
}
