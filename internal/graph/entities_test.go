package graph

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluorescence-graphql/internal/scanstore"
)

func TestScanFromRow_AllFieldsPopulated(t *testing.T) {
	start := time.Date(2024, 3, 14, 9, 26, 53, 0, time.FixedZone("BST", 3600))
	end := start.Add(90 * time.Second)

	row := scanstore.ScanRow{
		XFEFluorescenceSpectrumID: 101,
		SessionID:                 42,
		JpegScanFileFullPath:      sql.NullString{String: "/dls/i03/data/scan_101.jpeg", Valid: true},
		StartTime:                 sql.NullTime{Time: start, Valid: true},
		EndTime:                   sql.NullTime{Time: end, Valid: true},
		Filename:                  sql.NullString{String: "scan_101.mca", Valid: true},
		ExposureTime:              sql.NullFloat64{Float64: 1.5, Valid: true},
		AxisPosition:              sql.NullFloat64{Float64: 90.25, Valid: true},
		BeamTransmission:          sql.NullFloat64{Float64: 0.3, Valid: true},
		ScanFileFullPath:          sql.NullString{String: "/dls/i03/data/scan_101.mca", Valid: true},
		Energy:                    sql.NullFloat64{Float64: 12658.0, Valid: true},
		BeamSizeVertical:          sql.NullFloat64{Float64: 20.0, Valid: true},
		BeamSizeHorizontal:        sql.NullFloat64{Float64: 80.0, Valid: true},
	}

	scan := ScanFromRow(row)

	assert.Equal(t, uint32(101), scan.ID)
	assert.Equal(t, uint32(42), scan.SessionID)
	require.NotNil(t, scan.JpegScanFileFullPath)
	assert.Equal(t, "/dls/i03/data/scan_101.jpeg", *scan.JpegScanFileFullPath)
	require.NotNil(t, scan.Filename)
	assert.Equal(t, "scan_101.mca", *scan.Filename)
	require.NotNil(t, scan.ScanFileFullPath)
	assert.Equal(t, "/dls/i03/data/scan_101.mca", *scan.ScanFileFullPath)
	require.NotNil(t, scan.ExposureTime)
	assert.Equal(t, 1.5, *scan.ExposureTime)
	require.NotNil(t, scan.AxisPosition)
	assert.Equal(t, 90.25, *scan.AxisPosition)
	require.NotNil(t, scan.BeamTransmission)
	assert.Equal(t, 0.3, *scan.BeamTransmission)
	require.NotNil(t, scan.Energy)
	assert.Equal(t, 12658.0, *scan.Energy)
	require.NotNil(t, scan.BeamSizeVertical)
	assert.Equal(t, 20.0, *scan.BeamSizeVertical)
	require.NotNil(t, scan.BeamSizeHorizontal)
	assert.Equal(t, 80.0, *scan.BeamSizeHorizontal)
}

// The store holds naive timestamps, so retagging keeps the wall clock and
// attaches UTC rather than converting the instant.
func TestScanFromRow_RetagsTimestampsAsUTC(t *testing.T) {
	naive := time.Date(2024, 3, 14, 9, 26, 53, 0, time.FixedZone("BST", 3600))
	row := scanstore.ScanRow{
		XFEFluorescenceSpectrumID: 1,
		SessionID:                 1,
		StartTime:                 sql.NullTime{Time: naive, Valid: true},
	}

	scan := ScanFromRow(row)

	require.NotNil(t, scan.StartTime)
	assert.Equal(t, time.UTC, scan.StartTime.Location())
	assert.Equal(t, time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC), *scan.StartTime)
	assert.Nil(t, scan.EndTime)
}

func TestScanFromRow_NullOptionalsStayNil(t *testing.T) {
	scan := ScanFromRow(scanstore.ScanRow{
		XFEFluorescenceSpectrumID: 7,
		SessionID:                 42,
	})

	assert.Equal(t, uint32(7), scan.ID)
	assert.Equal(t, uint32(42), scan.SessionID)
	assert.Nil(t, scan.JpegScanFileFullPath)
	assert.Nil(t, scan.StartTime)
	assert.Nil(t, scan.EndTime)
	assert.Nil(t, scan.Filename)
	assert.Nil(t, scan.ExposureTime)
	assert.Nil(t, scan.AxisPosition)
	assert.Nil(t, scan.BeamTransmission)
	assert.Nil(t, scan.ScanFileFullPath)
	assert.Nil(t, scan.Energy)
	assert.Nil(t, scan.BeamSizeVertical)
	assert.Nil(t, scan.BeamSizeHorizontal)
}
