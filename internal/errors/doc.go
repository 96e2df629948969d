// Package errors provides the classified error type used across sheetwatch.
//
// Every error that crosses a package boundary carries a category, a severity
// and a retry strategy. The watch loop relies on the category to decide how a
// failure is contained:
//
//   - reader and notifier errors are target-scoped: logged, the target is
//     skipped, the cycle continues.
//   - cycle and state errors are cycle-scoped: the cycle is abandoned and the
//     scheduler backs off.
//   - config, registry and validation errors are fatal and only occur at
//     startup.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryReader, "read cell failed").
//		WithContext("target", target.DisplayName).
//		Build()
package errors
