// Package errs defines the error types that reach the HTTP layer.
//
// Two families live here:
//   - HTTPError, the generic JSON error shape used for routing, binding
//     and unexpected failures.
//   - ResponseError, which carries a fixed per-endpoint envelope (the
//     user resource's not-found and storage-fault responses) to the
//     global error handler untouched.
package errs
