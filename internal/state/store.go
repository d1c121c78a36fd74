package state

import (
	"sync"
	"time"
)

// Store is the single logical owner of the SystemState. All mutation goes
// through Update so that no two writers ever apply against the same
// pre-mutation snapshot. Reads hand out deep copies.
type Store struct {
	mu    sync.Mutex
	state *SystemState
}

// NewStore wraps an initial state.
func NewStore(initial *SystemState) *Store {
	return &Store{state: initial}
}

// Snapshot returns an isolated deep copy of the current state.
func (st *Store) Snapshot() *SystemState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Clone()
}

// Update applies fn to the live state under the store lock.
func (st *Store) Update(fn func(*SystemState)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.state)
}

// AddPressure raises the pressure metric, clamped to [0, PressureLimit].
func (st *Store) AddPressure(amount float64) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	v := st.state.Pressure.Value + amount
	if v > PressureLimit {
		v = PressureLimit
	}
	if v < 0 {
		v = 0
	}
	st.state.Pressure.Value = v
	return v
}

// DecayPressure lowers the pressure metric proportionally to the time
// elapsed since the last decay and to the current value.
// decayPerSecond is the fraction of the current value shed each second.
func (st *Store) DecayPressure(now time.Time, decayPerSecond float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	elapsed := now.Sub(st.state.Pressure.LastDecay)
	if elapsed <= 0 {
		return
	}
	amount := elapsed.Seconds() * decayPerSecond * st.state.Pressure.Value
	v := st.state.Pressure.Value - amount
	if v < 0 {
		v = 0
	}
	st.state.Pressure.Value = v
	st.state.Pressure.LastDecay = now
}

// Halted reports whether the halt latch is set.
func (st *Store) Halted() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Halted
}

// MergeRemote folds a remotely observed snapshot into the live state.
// Only known top-level fields are merged; zero-valued maps and slices in the
// remote document leave the local field untouched.
func (st *Store) MergeRemote(remote *SystemState) {
	if remote == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	st.state.Halted = remote.Halted
	if !remote.Pressure.LastDecay.IsZero() {
		st.state.Pressure = remote.Pressure
	}
	if len(remote.Rates) > 0 {
		st.state.Rates = remote.Rates
	}
	if len(remote.TotalSupply) > 0 {
		st.state.TotalSupply = remote.TotalSupply
	}
	if len(remote.Accounts) > 0 {
		st.state.Accounts = remote.Accounts
	}
	if !remote.Infrastructure.EnergySupply.LastChange.IsZero() {
		st.state.Infrastructure = remote.Infrastructure
	}
}
