package envoy

import (
	"encoding/json"
	"fmt"
	"time"
)

// MeterStatus is one CT channel in the livedata status response.
type MeterStatus struct {
	// AggregateMilliwatts is the instantaneous aggregate power in mW.
	// Positive is production/import, negative is consumption/export,
	// depending on the channel.
	AggregateMilliwatts int64 `json:"agg_p_mw"`
}

// MetersStatus groups the four CT channels of the gateway.
type MetersStatus struct {
	SOC        uint32      `json:"soc"`
	LastUpdate int64       `json:"last_update"` // UNIX seconds
	PV         MeterStatus `json:"pv"`
	Storage    MeterStatus `json:"storage"`
	Grid       MeterStatus `json:"grid"`
	Load       MeterStatus `json:"load"`
}

// LastUpdateTime returns the device-reported sample instant.
func (m *MetersStatus) LastUpdateTime() time.Time {
	return time.Unix(m.LastUpdate, 0).UTC()
}

// LiveStatus is the /ivp/livedata/status response.
type LiveStatus struct {
	Meters MetersStatus `json:"meters"`
}

// EnergyTotals is one "eim" aggregate in the /ivp/pdm/energy response.
type EnergyTotals struct {
	WattHoursToday     int64 `json:"wattHoursToday"`
	WattHoursSevenDays int64 `json:"wattHoursSevenDays"`
	WattHoursLifetime  int64 `json:"wattHoursLifetime"`
	WattsNow           int64 `json:"wattsNow"`
}

// EnergySection wraps the eim totals for one direction.
type EnergySection struct {
	EIM EnergyTotals `json:"eim"`
}

// Energy is the /ivp/pdm/energy response.
type Energy struct {
	Production  EnergySection `json:"production"`
	Consumption EnergySection `json:"consumption"`
}

// GridState is the grid connection state reported by a COLLAR device.
type GridState string

const (
	GridStateOnGrid           GridState = "on-grid"
	GridStateOffGrid          GridState = "off-grid"
	GridStateMultiModeOnGrid  GridState = "multimode-ongrid"
	GridStateMultiModeOffGrid GridState = "multimode-offgrid"
)

// EnchargeDevice is one battery in an ENCHARGE inventory row.
type EnchargeDevice struct {
	Capacity uint32 `json:"encharge_capacity"`
}

// CollarDevice carries the grid connection state.
type CollarDevice struct {
	GridState GridState `json:"grid_state"`
}

// InventoryRow is one device-class row in the /ivp/ensemble/inventory
// response. Devices is decoded per row type via Encharges or Collars.
type InventoryRow struct {
	Type    string          `json:"type"`
	Devices json.RawMessage `json:"devices"`
}

// Row types in the inventory response.
const (
	RowTypeEncharge = "ENCHARGE"
	RowTypeEnpower  = "ENPOWER"
	RowTypeCollar   = "COLLAR"
)

// Encharges decodes the row's devices as batteries.
// Returns nil for rows of a different type.
func (r *InventoryRow) Encharges() ([]EnchargeDevice, error) {
	if r.Type != RowTypeEncharge {
		return nil, nil
	}
	var devices []EnchargeDevice
	if err := json.Unmarshal(r.Devices, &devices); err != nil {
		return nil, fmt.Errorf("decode ENCHARGE devices: %w", err)
	}
	return devices, nil
}

// Collars decodes the row's devices as grid collars.
// Returns nil for rows of a different type.
func (r *InventoryRow) Collars() ([]CollarDevice, error) {
	if r.Type != RowTypeCollar {
		return nil, nil
	}
	var devices []CollarDevice
	if err := json.Unmarshal(r.Devices, &devices); err != nil {
		return nil, fmt.Errorf("decode COLLAR devices: %w", err)
	}
	return devices, nil
}
