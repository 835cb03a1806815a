package schema

import "github.com/graphql-go/graphql"

// New instantiates a fresh GraphQL schema for
// gqlbind's demo endpoint.
func New() graphql.SchemaConfig {
	return graphql.SchemaConfig{
		Query: graphql.NewObject(
			graphql.ObjectConfig{
				Name:   "Query",
				Fields: queryFields(),
			},
		),
		Mutation: graphql.NewObject(
			graphql.ObjectConfig{
				Name:   "Mutation",
				Fields: mutationFields(),
			},
		),
	}
}

func queryFields() graphql.Fields {
	return graphql.Fields{
		"hello": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "world", nil
			},
		},
		"echo": &graphql.Field{
			Type: graphql.String,
			Args: graphql.FieldConfigArgument{
				"message": &graphql.ArgumentConfig{
					Type: graphql.NewNonNull(graphql.String),
				},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Args["message"], nil
			},
		},
	}
}

func mutationFields() graphql.Fields {
	return graphql.Fields{
		"shout": &graphql.Field{
			Type: graphql.String,
			Args: graphql.FieldConfigArgument{
				"message": &graphql.ArgumentConfig{
					Type: graphql.NewNonNull(graphql.String),
				},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				message, _ := p.Args["message"].(string)
				return message + "!", nil
			},
		},
	}
}
