/*
Package manifest loads manifests and resolves them into a dispatch table.

Loading reads a JSON or YAML document, validates it against an embedded JSON schema and
decodes it into a domain.Manifest. Resolution binds every entity, action and error
handler against a symbols.Table:

	r := manifest.NewResolver(m, table, manifest.WithLogger(logger))
	entitiesOK := r.ResolveEntities()
	actionsOK := r.ResolveActions()
	if err := r.Err(); err != nil {
		// Some entries failed; the ones that resolved are still dispatchable.
	}

Resolution is best-effort: a bad entry is logged, recorded in the aggregate error and
skipped, and the rest of the manifest is still resolved.
*/
package manifest
