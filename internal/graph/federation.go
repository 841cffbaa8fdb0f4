package graph

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"fluorescence-graphql/internal/logging"
)

// federationSDL is the machine-readable schema artifact served through
// `_service { sdl }`. Session carries the key directive so the router can
// stitch other subgraphs' session objects onto this one; FluorescenceScan has
// no key and can only be reached by traversal from Session.
const federationSDL = `scalar DateTime

type FluorescenceScan {
	id: Int!
	session_id: Int!
	jpeg_scan_file_full_path: String
	start_time: DateTime
	end_time: DateTime
	filename: String
	exposure_time: Float
	axis_position: Float
	beam_transmission: Float
	scan_file_full_path: String
	energy: Float
	beam_size_vertical: Float
	beam_size_horizontal: Float
}

type Session @key(fields: "id") @extends {
	id: Int! @external
	fluorescence_scan: [FluorescenceScan!]!
}
`

// FederationSDL returns the subgraph SDL exported to the federation router.
func FederationSDL() string {
	return federationSDL
}

// addFederationFields wires the Apollo Federation query surface: the _Any
// scalar, the _Entity union over Session, the _entities reference resolver,
// and the _service SDL artifact.
func addFederationFields(fields graphql.Fields, sessionType *graphql.Object) {
	anyScalar := graphql.NewScalar(graphql.ScalarConfig{
		Name:        "_Any",
		Description: "An untyped entity representation supplied by the federation router.",
		Serialize:   func(value interface{}) interface{} { return value },
		ParseValue:  func(value interface{}) interface{} { return value },
		ParseLiteral: func(valueAST ast.Value) interface{} {
			return parseAnyLiteral(valueAST)
		},
	})

	entityUnion := graphql.NewUnion(graphql.UnionConfig{
		Name:        "_Entity",
		Description: "Entity types resolvable by reference in this subgraph.",
		Types:       []*graphql.Object{sessionType},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			if _, ok := p.Value.(Session); ok {
				return sessionType
			}
			return nil
		},
	})

	serviceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "_Service",
		Fields: graphql.Fields{
			"sdl": &graphql.Field{Type: graphql.String},
		},
	})

	fields["_entities"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(entityUnion)),
		Args: graphql.FieldConfigArgument{
			"representations": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(anyScalar))),
			},
		},
		Resolve: resolveEntities,
	}
	fields["_service"] = &graphql.Field{
		Type: graphql.NewNonNull(serviceType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return map[string]interface{}{"sdl": federationSDL}, nil
		},
	}
}

// resolveEntities reconstructs Session stubs from router representations.
// Construction is pure: the key is trusted to identify a valid upstream
// session, so no I/O happens here. A representation that cannot be
// interpreted yields a null slot without affecting its siblings.
func resolveEntities(p graphql.ResolveParams) (interface{}, error) {
	representations, ok := p.Args["representations"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("representations argument is not a list")
	}

	entities := make([]interface{}, 0, len(representations))
	for _, representation := range representations {
		session, err := sessionFromRepresentation(representation)
		if err != nil {
			logging.FromContext(p.Context).Warn("skipping unresolvable entity representation",
				slog.String("error", err.Error()),
			)
			entities = append(entities, nil)
			continue
		}
		entities = append(entities, session)
	}
	return entities, nil
}

func sessionFromRepresentation(representation interface{}) (Session, error) {
	fields, ok := representation.(map[string]interface{})
	if !ok {
		return Session{}, fmt.Errorf("representation is %T, expected an object", representation)
	}
	typename, _ := fields["__typename"].(string)
	if typename != "Session" {
		return Session{}, fmt.Errorf("unknown entity type %q", typename)
	}
	id, err := sessionIDFromValue(fields["id"])
	if err != nil {
		return Session{}, fmt.Errorf("invalid Session key: %w", err)
	}
	return Session{ID: id}, nil
}

// sessionIDFromValue coerces a representation key into a session id. Keys
// arrive as ints from GraphQL literals, float64 from JSON variables, or
// strings from routers that serialize keys opaquely.
func sessionIDFromValue(value interface{}) (uint32, error) {
	switch v := value.(type) {
	case int:
		if v < 0 || int64(v) > math.MaxUint32 {
			return 0, fmt.Errorf("id %d out of range", v)
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return 0, fmt.Errorf("id %d out of range", v)
		}
		return uint32(v), nil
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxUint32 {
			return 0, fmt.Errorf("id %v is not an unsigned integer", v)
		}
		return uint32(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("id %q is not an unsigned integer", v)
		}
		return uint32(parsed), nil
	default:
		return 0, fmt.Errorf("id is %T, expected an unsigned integer", value)
	}
}

func parseAnyLiteral(value ast.Value) interface{} {
	switch v := value.(type) {
	case *ast.ObjectValue:
		object := make(map[string]interface{}, len(v.Fields))
		for _, field := range v.Fields {
			object[field.Name.Value] = parseAnyLiteral(field.Value)
		}
		return object
	case *ast.ListValue:
		list := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			list = append(list, parseAnyLiteral(item))
		}
		return list
	case *ast.IntValue:
		if parsed, err := strconv.Atoi(v.Value); err == nil {
			return parsed
		}
		return v.Value
	case *ast.FloatValue:
		if parsed, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return parsed
		}
		return v.Value
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	default:
		return nil
	}
}
