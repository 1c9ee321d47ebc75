// Package domain models seismic sources (events) and receivers (stations) as
// consumed by waveform solver backends.
//
// # Events
//
// An event is a point source described by its hypocenter and a moment tensor:
//
//	latitude, longitude   degrees, WGS-84, [-90, 90] and [-180, 180]
//	depth_in_km           kilometres below the surface, >= 0
//	origin_time           UTC, microsecond precision
//	m_rr ... m_tp         the six independent moment tensor components in N·m
//	                      (r = up, t = south, p = east)
//
// All six components are mandatory. A source without a complete tensor cannot
// be simulated and is rejected as invalid.
//
// The optional public_id (e.g. a QuakeML resource identifier such as
// "smi:local/event/1") is only used for filtering and deduplication and is
// stripped before records reach a backend.
//
// # Stations
//
// Stations are identified by "NETWORK.STATION", e.g. "BW.FURT". The
// local_depth_in_m field is the burial depth of the sensor below the surface
// and defaults to zero when absent.
//
// # Identity
//
// Stations are unique by id. Events are unique by public id when present and
// otherwise by a deterministic SHA-256 fingerprint of every normalized field,
// description included. See [Event.Key].
package domain
