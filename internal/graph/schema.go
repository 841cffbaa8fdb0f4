package graph

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"fluorescence-graphql/internal/gqlrequest"
	"fluorescence-graphql/internal/scanstore"
)

// Schema is the compiled, executable subgraph schema. It is read-only: no
// mutation or subscription roots are declared.
type Schema struct {
	root graphql.Schema
}

// New compiles the subgraph schema: the Session reference target, the
// FluorescenceScan value type, and the federation machinery.
func New() (*Schema, error) {
	scanType := buildScanType()
	sessionType := buildSessionType(scanType)

	queryFields := graphql.Fields{}
	addFederationFields(queryFields, sessionType)

	root, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build subgraph schema: %w", err)
	}
	return &Schema{root: root}, nil
}

// Root exposes the compiled graphql-go schema for handler integration.
func (s *Schema) Root() *graphql.Schema {
	return &s.root
}

// Execute runs a structured query document against the schema. Field errors
// are collected into the result alongside any resolved data; execution never
// returns a transport-level failure.
func (s *Schema) Execute(ctx context.Context, doc gqlrequest.Document) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.root,
		RequestString:  doc.Query,
		VariableValues: doc.Variables,
		OperationName:  doc.OperationName,
		Context:        ctx,
	})
}

func buildScanType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "FluorescenceScan",
		Description: "Represents XFEFluorescenceSpectrum table from the ISPyB database",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "An opaque unique identifier for the XFEFluorescenceSpectrum",
			},
			"session_id": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "An opaque unique identifier for a session",
			},
			"jpeg_scan_file_full_path": &graphql.Field{
				Type:        graphql.String,
				Description: "Full path of the scan file in jpeg format",
			},
			"start_time": &graphql.Field{
				Type:        graphql.DateTime,
				Description: "Start time of the scan",
			},
			"end_time": &graphql.Field{
				Type:        graphql.DateTime,
				Description: "End time of the scan",
			},
			"filename": &graphql.Field{
				Type:        graphql.String,
				Description: "Scan file name",
			},
			"exposure_time": &graphql.Field{
				Type:        graphql.Float,
				Description: "Beam exposure time",
			},
			"axis_position": &graphql.Field{
				Type:        graphql.Float,
				Description: "Beam axis position",
			},
			"beam_transmission": &graphql.Field{
				Type:        graphql.Float,
				Description: "Amount of beam transmission",
			},
			"scan_file_full_path": &graphql.Field{
				Type:        graphql.String,
				Description: "Full path of the scan file",
			},
			"energy": &graphql.Field{
				Type:        graphql.Float,
				Description: "Amount of energy from the beam",
			},
			"beam_size_vertical": &graphql.Field{
				Type:        graphql.Float,
				Description: "Beam vertical size",
			},
			"beam_size_horizontal": &graphql.Field{
				Type:        graphql.Float,
				Description: "Beam horizontal size",
			},
		},
	})
}

func buildSessionType(scanType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Session",
		Description: "A beamline session owned by the sessions subgraph",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "An opaque unique identifier for session",
			},
			"fluorescence_scan": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(scanType))),
				Description: "All fluorescence scans collected during this session",
				Resolve:     resolveFluorescenceScans,
			},
		},
	})
}

// resolveFluorescenceScans fetches every scan row for the parent session and
// maps it to the graph entity. The query executor comes from the request
// context; its absence is a field error, not a transport failure. Results are
// computed fresh on every invocation.
func resolveFluorescenceScans(p graphql.ResolveParams) (interface{}, error) {
	session, ok := p.Source.(Session)
	if !ok {
		return nil, fmt.Errorf("fluorescence_scan resolved against %T, expected Session", p.Source)
	}

	executor, err := gqlrequest.Database(p.Context)
	if err != nil {
		return nil, err
	}

	rows, err := scanstore.BySession(p.Context, executor, session.ID)
	if err != nil {
		return nil, err
	}

	scans := make([]FluorescenceScan, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, ScanFromRow(row))
	}
	return scans, nil
}
