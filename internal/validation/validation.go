// Package validation binds request data and runs the payload's own
// validation.
//
// Payloads implement Validatable with an explicit Validate method that
// reports every violated constraint, and violations are turned into a
// 422 response the client can act on field by field.
package validation
