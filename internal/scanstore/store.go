// Package scanstore reads XFEFluorescenceSpectrum rows from the ISPyB database.
// It owns the single read query this service issues: all scans for a session.
package scanstore

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"fluorescence-graphql/internal/dbexec"
)

// Table is the backing table for fluorescence scan records.
const Table = "XFEFluorescenceSpectrum"

// columns lists the selected columns in ScanRow scan order.
var columns = []string{
	"`xfeFluorescenceSpectrumId`",
	"`sessionId`",
	"`jpegScanFileFullPath`",
	"`startTime`",
	"`endTime`",
	"`filename`",
	"`exposureTime`",
	"`axisPosition`",
	"`beamTransmission`",
	"`scanFileFullPath`",
	"`energy`",
	"`beamSizeVertical`",
	"`beamSizeHorizontal`",
}

// ScanRow mirrors one XFEFluorescenceSpectrum row. Every measurement column
// is nullable because the beamline writes partial records.
type ScanRow struct {
	XFEFluorescenceSpectrumID uint32
	SessionID                 uint32
	JpegScanFileFullPath      sql.NullString
	StartTime                 sql.NullTime
	EndTime                   sql.NullTime
	Filename                  sql.NullString
	ExposureTime              sql.NullFloat64
	AxisPosition              sql.NullFloat64
	BeamTransmission          sql.NullFloat64
	ScanFileFullPath          sql.NullString
	Energy                    sql.NullFloat64
	BeamSizeVertical          sql.NullFloat64
	BeamSizeHorizontal        sql.NullFloat64
}

// BySession returns all scan rows whose sessionId equals the given id, in the
// store's natural order. A session with no scans yields an empty slice.
func BySession(ctx context.Context, executor dbexec.QueryExecutor, sessionID uint32) ([]ScanRow, error) {
	query, args, err := sq.Select(columns...).
		From("`" + Table + "`").
		Where(sq.Eq{"`sessionId`": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan query: %w", err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fluorescence scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	scans := []ScanRow{}
	for rows.Next() {
		var row ScanRow
		if err := rows.Scan(
			&row.XFEFluorescenceSpectrumID,
			&row.SessionID,
			&row.JpegScanFileFullPath,
			&row.StartTime,
			&row.EndTime,
			&row.Filename,
			&row.ExposureTime,
			&row.AxisPosition,
			&row.BeamTransmission,
			&row.ScanFileFullPath,
			&row.Energy,
			&row.BeamSizeVertical,
			&row.BeamSizeHorizontal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fluorescence scan row: %w", err)
		}
		scans = append(scans, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fluorescence scan rows: %w", err)
	}
	return scans, nil
}
