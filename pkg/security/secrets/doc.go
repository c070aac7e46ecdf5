// Package secrets resolves ${secret:name} references in configuration values.
//
// A reference is looked up in each source in order: environment variables
// (PARACORD_SECRET_<NAME>, with hyphens mapped to underscores), then one file
// per secret in a directory such as the /run/secrets mount of Docker and
// Kubernetes. Values that contain no reference pass through unchanged.
//
//	resolver := secrets.FromConfig(cfg.Secrets)
//	if err := resolver.ResolveConfig(ctx, cfg); err != nil {
//		return err
//	}
package secrets
