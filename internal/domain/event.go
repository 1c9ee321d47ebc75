package domain

import (
	"strings"
	"time"
)

// Event is a validated seismic source.
type Event struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DepthInKm   float64   `json:"depth_in_km"`
	OriginTime  time.Time `json:"origin_time"`
	Mrr         float64   `json:"m_rr"`
	Mtt         float64   `json:"m_tt"`
	Mpp         float64   `json:"m_pp"`
	Mrt         float64   `json:"m_rt"`
	Mrp         float64   `json:"m_rp"`
	Mtp         float64   `json:"m_tp"`
	Description *string   `json:"description"`
	PublicID    string    `json:"public_id,omitempty"`
}

// MomentTensor returns the components in the order rr, tt, pp, rt, rp, tp.
func (e Event) MomentTensor() [6]float64 {
	return [6]float64{e.Mrr, e.Mtt, e.Mpp, e.Mrt, e.Mrp, e.Mtp}
}

// Station is a validated seismic receiver.
type Station struct {
	ID            string  `json:"id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	ElevationInM  float64 `json:"elevation_in_m"`
	LocalDepthInM float64 `json:"local_depth_in_m"`
}

// Network returns the network code of the id.
func (s Station) Network() string {
	network, _, _ := strings.Cut(s.ID, ".")
	return network
}

// Code returns the station code of the id.
func (s Station) Code() string {
	_, code, _ := strings.Cut(s.ID, ".")
	return code
}
