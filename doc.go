// Package trackermcp serves an MCP surface over external issue and
// time tracking providers (Redmine, Jira Cloud, Monday.com).
//
// Each authenticated request resolves a bearer token to a user
// credential, builds the provider adapter for that credential, and
// assembles an MCP server whose tool and resource set matches exactly
// what the provider supports: read-only providers expose read tools
// only, providers without an activity concept expose no activities
// resource, and so on. Domain objects are normalized into one
// provider-agnostic model before they reach a client.
//
// The minimal embedding is:
//
//	resolver := trackermcp.StaticResolver{"token": cred}
//	srv, err := trackermcp.New(resolver)
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", srv.HTTPHandler())
package trackermcp
