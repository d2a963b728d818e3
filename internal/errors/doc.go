// Package errors provides structured errors for the item parser.
//
// Errors carry a Code, a user-facing message, an optional cause and free-form
// metadata. Completion providers report failures through Provider, which keeps
// the HTTP status and any retry-after hint in metadata so the retry and
// diagnosis layers can classify them without knowing which SDK produced them.
//
// # Basic Usage
//
//	err := errors.NotFound("item not found")
//	err := errors.InvalidArgumentf("unknown parsing mode: %s", mode)
//
// Wrapping keeps the original code:
//
//	if err := repo.Persist(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to persist item")
//	}
//
// Provider failures:
//
//	err := errors.Provider("openai", 429, cause).WithMeta(errors.MetaRetryAfter, "20")
//	errors.StatusCode(err) // 429
//
// # Validation
//
// Config structs validate through the builder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("model", cfg.Model, vb)
//	errors.ValidatePositive("requests_per_second", float64(cfg.RequestsPerSecond), vb)
//	return vb.Build()
package errors
