package epoch

import "testing"

func TestNextEpochAdvancesPerScene(t *testing.T) {
	db := NewDB()
	if e := db.NextEpoch(1); e != 1 {
		t.Fatalf("expected first epoch 1, got %d", e)
	}
	if e := db.NextEpoch(1); e != 2 {
		t.Fatalf("expected second epoch 2, got %d", e)
	}
	if e := db.CurrentEpoch(2); e != 0 {
		t.Fatalf("expected unseen scene to report 0, got %d", e)
	}
}

func TestScenesAreIsolated(t *testing.T) {
	db := NewDB()
	db.NextEpoch(1)
	db.NextEpoch(2)
	if db.CurrentEpoch(1) != db.CurrentEpoch(2) {
		t.Fatalf("expected both scenes at epoch 1, got %d and %d", db.CurrentEpoch(1), db.CurrentEpoch(2))
	}
}

func TestSkipEpochs(t *testing.T) {
	db := NewDB()
	db.NextEpoch(1)
	if e := db.SkipEpochs(1, 3); e != 4 {
		t.Fatalf("expected epoch 4 after skip, got %d", e)
	}
}

func TestBakedWastedAfterIdleBudget(t *testing.T) {
	db := NewDB()
	for i := 0; i < 4; i++ {
		db.NextEpoch(1)
	}
	if status := db.Baked(1, 1, 2); status != Wasted {
		t.Fatalf("expected Wasted (1+2 < 4), got %v", status)
	}
	if status := db.Baked(1, 3, 2); status != Pending {
		t.Fatalf("expected Pending (3+2 >= 4), got %v", status)
	}
}

func TestConstraintsValidate(t *testing.T) {
	c := NewConstraints([]Constraint{
		{EpochDelta: 5, MaxAllowedDistance: 10},
		{EpochDelta: 1, MaxAllowedDistance: 2},
		{EpochDelta: 1, MaxAllowedDistance: 999}, // duplicate delta, first wins
	})
	if !c.Validate(1, 2) {
		t.Fatalf("expected delta=1 d=2 to pass (limit 2)")
	}
	if c.Validate(1, 3) {
		t.Fatalf("expected delta=1 d=3 to fail (limit 2)")
	}
	if !c.Validate(3, 10) {
		t.Fatalf("expected delta=3 to fall through to the epoch_delta=5 entry and pass")
	}
	if !c.Validate(10, 1e9) {
		t.Fatalf("expected delta beyond every entry to always pass")
	}
}

func TestNilConstraintsAlwaysPass(t *testing.T) {
	var c *Constraints
	if !c.Validate(100, 1e9) {
		t.Fatalf("expected nil constraints to always pass")
	}
}
