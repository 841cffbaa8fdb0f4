package scanstore

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluorescence-graphql/internal/dbexec"
)

const selectScans = "SELECT `xfeFluorescenceSpectrumId`, `sessionId`, `jpegScanFileFullPath`, " +
	"`startTime`, `endTime`, `filename`, `exposureTime`, `axisPosition`, `beamTransmission`, " +
	"`scanFileFullPath`, `energy`, `beamSizeVertical`, `beamSizeHorizontal` " +
	"FROM `XFEFluorescenceSpectrum` WHERE `sessionId` = ?"

var testColumns = []string{
	"xfeFluorescenceSpectrumId", "sessionId", "jpegScanFileFullPath",
	"startTime", "endTime", "filename", "exposureTime", "axisPosition",
	"beamTransmission", "scanFileFullPath", "energy",
	"beamSizeVertical", "beamSizeHorizontal",
}

func newMockExecutor(t *testing.T) (*dbexec.StandardExecutor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return dbexec.NewStandardExecutor(db), mock
}

func TestBySession_ReturnsRowsInStoreOrder(t *testing.T) {
	executor, mock := newMockExecutor(t)

	start := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectScans)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(testColumns).
			AddRow(101, 42, "/dls/i03/scan_101.jpeg", start, start.Add(90*time.Second),
				"scan_101.mca", 1.5, 90.25, 0.3, "/dls/i03/scan_101.mca", 12658.0, 20.0, 80.0).
			AddRow(102, 42, nil, nil, nil, "scan_102.mca", nil, nil, nil, nil, nil, nil, nil))

	rows, err := BySession(context.Background(), executor, 42)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, uint32(101), first.XFEFluorescenceSpectrumID)
	assert.Equal(t, uint32(42), first.SessionID)
	assert.True(t, first.JpegScanFileFullPath.Valid)
	assert.Equal(t, "/dls/i03/scan_101.jpeg", first.JpegScanFileFullPath.String)
	assert.True(t, first.StartTime.Valid)
	assert.True(t, start.Equal(first.StartTime.Time))
	assert.True(t, first.ExposureTime.Valid)
	assert.Equal(t, 1.5, first.ExposureTime.Float64)
	assert.Equal(t, 12658.0, first.Energy.Float64)

	second := rows[1]
	assert.Equal(t, uint32(102), second.XFEFluorescenceSpectrumID)
	assert.False(t, second.JpegScanFileFullPath.Valid)
	assert.False(t, second.StartTime.Valid)
	assert.False(t, second.ExposureTime.Valid)
	assert.True(t, second.Filename.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBySession_NoRowsIsEmptyNonNilSlice(t *testing.T) {
	executor, mock := newMockExecutor(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectScans)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(testColumns))

	rows, err := BySession(context.Background(), executor, 7)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBySession_QueryErrorIsWrapped(t *testing.T) {
	executor, mock := newMockExecutor(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectScans)).
		WithArgs(42).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := BySession(context.Background(), executor, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query fluorescence scans")
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBySession_RowErrorIsWrapped(t *testing.T) {
	executor, mock := newMockExecutor(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectScans)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(testColumns).
			AddRow(101, 42, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
			RowError(0, fmt.Errorf("torn page")))

	_, err := BySession(context.Background(), executor, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "torn page")
	assert.NoError(t, mock.ExpectationsWereMet())
}
