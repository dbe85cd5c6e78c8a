package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares got against testdata/golden/{name}.golden.
//
// To regenerate golden files, run the package tests with -update:
//
//	go test ./internal/querysql -update
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

// AssertGoldenString is AssertGolden for text output such as SQL.
func AssertGoldenString(t *testing.T, name, got string) {
	t.Helper()
	AssertGolden(t, name, []byte(got))
}
