package budget

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeLedger struct {
	mu    sync.Mutex
	spent int
	ok    bool
	err   error
}

func (f *fakeLedger) SpendBonusSwitches(ctx context.Context, count int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil && f.ok {
		f.spent += count
	}
	return f.ok, f.err
}

func intPtr(n int) *int { return &n }

func TestAccountantBaseThenBonus(t *testing.T) {
	ledger := &fakeLedger{ok: true}
	acct := New(intPtr(2), 1, ledger, nil)
	ctx := context.Background()

	used := 0
	for i := 0; i < 3; i++ {
		if !acct.SwitchToRead(ctx) {
			t.Fatalf("switch %d denied, want allowed", i+1)
		}
		used++
	}

	if acct.SwitchToRead(ctx) {
		t.Error("fourth switch allowed, want denied")
	}
	if used != 3 {
		t.Errorf("switches used = %d, want 3", used)
	}

	acct.Wait()
	if ledger.spent != 1 {
		t.Errorf("ledger spends = %d, want 1", ledger.spent)
	}
	base, bonus := acct.Remaining()
	if base == nil || *base != 0 || bonus != 0 {
		t.Errorf("remaining = %v/%d, want 0/0", base, bonus)
	}
}

func TestAccountantUnlimited(t *testing.T) {
	ledger := &fakeLedger{ok: true}
	acct := New(nil, 0, ledger, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if !acct.SwitchToRead(ctx) {
			t.Fatalf("switch %d denied under unlimited budget", i+1)
		}
	}

	acct.Wait()
	if ledger.spent != 0 {
		t.Errorf("ledger spends = %d, want 0 for unlimited base", ledger.spent)
	}
}

func TestAccountantRollbackOnConfirmationFailure(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("network down")}
	var spendErr error
	acct := New(intPtr(0), 1, ledger, func(err error) { spendErr = err })
	ctx := context.Background()

	// The switch itself succeeds; only the accounting rolls back
	if !acct.SwitchToRead(ctx) {
		t.Fatal("bonus switch denied, want allowed")
	}
	acct.Wait()

	_, bonus := acct.Remaining()
	if bonus != 1 {
		t.Errorf("bonus after rollback = %d, want 1", bonus)
	}
	if spendErr == nil {
		t.Error("spend error callback not invoked")
	}
}

func TestAccountantRollbackOnLedgerRejection(t *testing.T) {
	ledger := &fakeLedger{ok: false}
	acct := New(intPtr(0), 2, ledger, nil)
	ctx := context.Background()

	if !acct.SwitchToRead(ctx) {
		t.Fatal("bonus switch denied, want allowed")
	}
	acct.Wait()

	_, bonus := acct.Remaining()
	if bonus != 2 {
		t.Errorf("bonus after rejection rollback = %d, want 2", bonus)
	}
}

func TestAccountantDeniedWhenExhausted(t *testing.T) {
	acct := New(intPtr(0), 0, &fakeLedger{ok: true}, nil)

	if acct.SwitchToRead(context.Background()) {
		t.Error("switch allowed with zero base and zero bonus")
	}
}
