// Package state holds the latest live snapshot reported by the gateway.
package state

import (
	"sync"
	"time"
)

// SystemState is the most recent live reading. Power values are milliwatts,
// energy values milliwatt-hours; grid and storage go negative when exporting
// or charging.
type SystemState struct {
	LastUpdate                     time.Time `json:"last_update"`
	BatterySOC                     uint32    `json:"battery_soc"`
	PVMilliwatts                   int64     `json:"pv_mw"`
	StorageMilliwatts              int64     `json:"storage_mw"`
	GridMilliwatts                 int64     `json:"grid_mw"`
	LoadMilliwatts                 int64     `json:"load_mw"`
	ProductionTodayMilliwattHours  int64     `json:"production_mwh_today"`
	ConsumptionTodayMilliwattHours int64     `json:"consumption_mwh_today"`
}

// Inventory describes the battery fleet and grid connection.
type Inventory struct {
	NumBatteries    int    `json:"num_batteries"`
	BatteryCapacity uint32 `json:"battery_capacity"`
	GridState       string `json:"grid_state,omitempty"`
}

// Tracker holds the latest SystemState and Inventory behind one lock.
// Safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	state     SystemState
	inventory Inventory
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetState replaces the live snapshot.
func (t *Tracker) SetState(s SystemState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// SetInventory replaces the inventory.
func (t *Tracker) SetInventory(inv Inventory) {
	t.mu.Lock()
	t.inventory = inv
	t.mu.Unlock()
}

// State returns the current live snapshot.
func (t *Tracker) State() SystemState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Inventory returns the current inventory.
func (t *Tracker) Inventory() Inventory {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inventory
}
