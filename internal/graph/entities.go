// Package graph declares the federated GraphQL schema exposing fluorescence
// scan records, stitched onto the externally owned Session entity.
package graph

import (
	"database/sql"
	"time"

	"fluorescence-graphql/internal/scanstore"
)

// Session is a reference to a session entity owned by another subgraph. This
// subgraph holds no session fields beyond the key and never persists it; a
// value is reconstructed per request from a federation representation.
type Session struct {
	ID uint32 `json:"id"`
}

// FluorescenceScan is one XFEFluorescenceSpectrum record. All measurement
// fields are pointers because the backing store permits partial rows.
type FluorescenceScan struct {
	ID                   uint32     `json:"id"`
	SessionID            uint32     `json:"session_id"`
	JpegScanFileFullPath *string    `json:"jpeg_scan_file_full_path"`
	StartTime            *time.Time `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	Filename             *string    `json:"filename"`
	ExposureTime         *float64   `json:"exposure_time"`
	AxisPosition         *float64   `json:"axis_position"`
	BeamTransmission     *float64   `json:"beam_transmission"`
	ScanFileFullPath     *string    `json:"scan_file_full_path"`
	Energy               *float64   `json:"energy"`
	BeamSizeVertical     *float64   `json:"beam_size_vertical"`
	BeamSizeHorizontal   *float64   `json:"beam_size_horizontal"`
}

// ScanFromRow converts a backing-store row into the graph entity. The store's
// primary-key column becomes id; naive store timestamps are retagged as UTC.
func ScanFromRow(row scanstore.ScanRow) FluorescenceScan {
	return FluorescenceScan{
		ID:                   row.XFEFluorescenceSpectrumID,
		SessionID:            row.SessionID,
		JpegScanFileFullPath: nullString(row.JpegScanFileFullPath),
		StartTime:            nullTimeUTC(row.StartTime),
		EndTime:              nullTimeUTC(row.EndTime),
		Filename:             nullString(row.Filename),
		ExposureTime:         nullFloat(row.ExposureTime),
		AxisPosition:         nullFloat(row.AxisPosition),
		BeamTransmission:     nullFloat(row.BeamTransmission),
		ScanFileFullPath:     nullString(row.ScanFileFullPath),
		Energy:               nullFloat(row.Energy),
		BeamSizeVertical:     nullFloat(row.BeamSizeVertical),
		BeamSizeHorizontal:   nullFloat(row.BeamSizeHorizontal),
	}
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// nullTimeUTC keeps the wall clock and attaches UTC. The store holds naive
// timestamps, so the location on the scanned value carries no information.
func nullTimeUTC(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	utc := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return &utc
}
