// Package testutil holds helpers shared by package tests: golden-file
// assertions for generated SQL, plan loading, a discarding logger and a
// fixed trace id generator for deterministic CLI output.
package testutil
