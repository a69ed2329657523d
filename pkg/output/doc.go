// Package output encodes query results as CSV, JSON or Python literals and
// builds the fixed16 response header.
package output
