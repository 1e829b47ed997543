// Package budget tracks the finite allowance of switches back into
// read-along mode: a base quota from the lesson settings plus an externally
// granted bonus spent against a remote ledger.
package budget

import (
	"context"
	"log"
	"sync"
)

// Ledger confirms bonus spends with the external grant-tracking service
type Ledger interface {
	SpendBonusSwitches(ctx context.Context, count int) (bool, error)
}

// Accountant governs whether switching to read mode is permitted and keeps
// the counters honest when a remote bonus confirmation fails. The mode switch
// itself is never rolled back, only the budget accounting.
type Accountant struct {
	mu             sync.Mutex
	baseRemaining  *int // nil means unlimited
	bonusRemaining int
	ledger         Ledger
	onSpendError   func(error)
	confirmations  sync.WaitGroup
}

// New creates an accountant. maxSwitches nil means unlimited base switches.
// onSpendError is invoked (outside the lock) when a bonus confirmation fails
// and the spend has been rolled back; nil is allowed.
func New(maxSwitches *int, bonusRemaining int, ledger Ledger, onSpendError func(error)) *Accountant {
	a := &Accountant{
		bonusRemaining: bonusRemaining,
		ledger:         ledger,
		onSpendError:   onSpendError,
	}
	if maxSwitches != nil {
		base := *maxSwitches
		a.baseRemaining = &base
	}
	return a
}

// Remaining reports the current counters. Base nil means unlimited.
func (a *Accountant) Remaining() (base *int, bonus int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.baseRemaining != nil {
		b := *a.baseRemaining
		base = &b
	}
	return base, a.bonusRemaining
}

// SwitchToRead attempts to consume one switch. With an unlimited base it
// always succeeds and no counters change. Otherwise base is drawn down first;
// once exhausted, a bonus switch is spent and confirmed with the ledger in
// the background. A failed confirmation restores the bonus counter.
func (a *Accountant) SwitchToRead(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.baseRemaining == nil {
		return true
	}

	if *a.baseRemaining > 0 {
		*a.baseRemaining--
		return true
	}

	if a.bonusRemaining <= 0 {
		return false
	}

	a.bonusRemaining--
	a.confirmations.Add(1)
	go a.confirmSpend(ctx)
	return true
}

// confirmSpend reports one bonus spend to the ledger, rolling the counter
// back when the ledger rejects it or the request fails
func (a *Accountant) confirmSpend(ctx context.Context) {
	defer a.confirmations.Done()

	ok, err := a.ledger.SpendBonusSwitches(ctx, 1)
	if ok && err == nil {
		return
	}

	a.mu.Lock()
	a.bonusRemaining++
	a.mu.Unlock()

	if err != nil {
		log.Printf("Bonus switch confirmation failed, rolled back: %v", err)
	} else {
		log.Printf("Bonus switch spend rejected by ledger, rolled back")
	}
	if a.onSpendError != nil {
		a.onSpendError(err)
	}
}

// Wait blocks until all outstanding bonus confirmations have settled
func (a *Accountant) Wait() {
	a.confirmations.Wait()
}
