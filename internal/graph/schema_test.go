package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluorescence-graphql/internal/dbexec"
	"fluorescence-graphql/internal/gqlrequest"
	"fluorescence-graphql/internal/storage"
)

var scanColumns = []string{
	"xfeFluorescenceSpectrumId",
	"sessionId",
	"jpegScanFileFullPath",
	"startTime",
	"endTime",
	"filename",
	"exposureTime",
	"axisPosition",
	"beamTransmission",
	"scanFileFullPath",
	"energy",
	"beamSizeVertical",
	"beamSizeHorizontal",
}

func newTestSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := New()
	require.NoError(t, err)
	return schema
}

func newMockContext(t *testing.T) (context.Context, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := gqlrequest.WithDependencies(context.Background(), gqlrequest.Dependencies{
		DB:     dbexec.NewStandardExecutor(db),
		Bucket: storage.Bucket("scan-files"),
	})
	return ctx, mock
}

func entityAt(t *testing.T, result interface{}, index int) map[string]interface{} {
	t.Helper()
	data, ok := result.(map[string]interface{})
	require.True(t, ok, "expected map data, got %T", result)
	entities, ok := data["_entities"].([]interface{})
	require.True(t, ok, "expected _entities list, got %T", data["_entities"])
	require.Greater(t, len(entities), index)
	entity, _ := entities[index].(map[string]interface{})
	return entity
}

func TestFluorescenceScanResolver_ReturnsMappedRows(t *testing.T) {
	schema := newTestSchema(t)
	ctx, mock := newMockContext(t)

	mock.ExpectQuery("SELECT .* FROM `XFEFluorescenceSpectrum` WHERE `sessionId` = ?").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(scanColumns).
			AddRow(101, 42, nil, nil, nil, "scan_101.mca", nil, nil, nil, "/dls/i03/scan_101.mca", nil, nil, nil).
			AddRow(102, 42, nil, nil, nil, "scan_102.mca", nil, nil, nil, "/dls/i03/scan_102.mca", nil, nil, nil))

	result := schema.Execute(ctx, gqlrequest.Document{
		Query: `{ _entities(representations: [{__typename: "Session", id: 42}]) { ... on Session { id fluorescence_scan { id session_id filename scan_file_full_path } } } }`,
	})

	require.Empty(t, result.Errors)
	session := entityAt(t, result.Data, 0)
	assert.Equal(t, 42, session["id"])

	scans, ok := session["fluorescence_scan"].([]interface{})
	require.True(t, ok, "expected scan list, got %T", session["fluorescence_scan"])
	require.Len(t, scans, 2)

	first, _ := scans[0].(map[string]interface{})
	assert.Equal(t, 101, first["id"])
	assert.Equal(t, 42, first["session_id"])
	assert.Equal(t, "scan_101.mca", first["filename"])
	assert.Equal(t, "/dls/i03/scan_101.mca", first["scan_file_full_path"])

	second, _ := scans[1].(map[string]interface{})
	assert.Equal(t, 102, second["id"])
	assert.Equal(t, 42, second["session_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFluorescenceScanResolver_NoRowsIsEmptyList(t *testing.T) {
	schema := newTestSchema(t)
	ctx, mock := newMockContext(t)

	mock.ExpectQuery("SELECT .* FROM `XFEFluorescenceSpectrum`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(scanColumns))

	result := schema.Execute(ctx, gqlrequest.Document{
		Query: `{ _entities(representations: [{__typename: "Session", id: 7}]) { ... on Session { fluorescence_scan { id } } } }`,
	})

	require.Empty(t, result.Errors)
	session := entityAt(t, result.Data, 0)
	scans, ok := session["fluorescence_scan"].([]interface{})
	require.True(t, ok, "empty result must still be a list, got %T", session["fluorescence_scan"])
	assert.Empty(t, scans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFluorescenceScanResolver_MissingDatabaseIsFieldError(t *testing.T) {
	schema := newTestSchema(t)

	result := schema.Execute(context.Background(), gqlrequest.Document{
		Query: `{ _entities(representations: [{__typename: "Session", id: 42}]) { ... on Session { fluorescence_scan { id } } } }`,
	})

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, gqlrequest.ErrNoDatabase.Error())
}

func TestFluorescenceScanResolver_QueryFailureIsFieldError(t *testing.T) {
	schema := newTestSchema(t)
	ctx, mock := newMockContext(t)

	mock.ExpectQuery("SELECT .* FROM `XFEFluorescenceSpectrum`").
		WithArgs(42).
		WillReturnError(fmt.Errorf("connection reset"))

	result := schema.Execute(ctx, gqlrequest.Document{
		Query: `{ _entities(representations: [{__typename: "Session", id: 42}]) { ... on Session { fluorescence_scan { id } } } }`,
	})

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFluorescenceScanResolver_VariablesRepresentation(t *testing.T) {
	schema := newTestSchema(t)
	ctx, mock := newMockContext(t)

	mock.ExpectQuery("SELECT .* FROM `XFEFluorescenceSpectrum`").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(scanColumns))

	result := schema.Execute(ctx, gqlrequest.Document{
		Query: `query ($reps: [_Any!]!) { _entities(representations: $reps) { ... on Session { id fluorescence_scan { id } } } }`,
		// JSON-decoded variables carry the id as float64.
		Variables: map[string]interface{}{
			"reps": []interface{}{map[string]interface{}{"__typename": "Session", "id": float64(42)}},
		},
	})

	require.Empty(t, result.Errors)
	session := entityAt(t, result.Data, 0)
	assert.Equal(t, 42, session["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
