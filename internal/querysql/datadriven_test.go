package querysql

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"

	"github.com/roach88/provsql/internal/planfile"
	"github.com/roach88/provsql/internal/testutil"
)

// TestSerializeDataDriven runs the plan scenarios under testdata/serialize.
//
//	serialize [model] [max-depth=N]
//	<YAML plan document>
//	----
//	<SQL, or "error: ...">
func TestSerializeDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata/serialize", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "serialize":
				return runSerialize(t, d)
			default:
				d.Fatalf(t, "unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}

func runSerialize(t *testing.T, d *datadriven.TestData) string {
	doc, err := planfile.Parse([]byte(d.Input))
	if err != nil {
		return "error: " + err.Error()
	}
	res, err := planfile.Build(context.Background(), doc, nil)
	if err != nil {
		return "error: " + err.Error()
	}

	s := testSerializer()
	if d.HasArg("max-depth") {
		d.ScanArgs(t, "max-depth", &s.MaxDepth)
	}

	var out string
	if d.HasArg("model") {
		out, err = s.SerializeModel(res.Plan, res.Roots...)
	} else {
		if len(res.Roots) != 1 {
			d.Fatalf(t, "expected one root, plan has %d", len(res.Roots))
		}
		out, err = s.SerializeQuery(res.Plan, res.Roots[0])
	}
	if err != nil {
		var se *SerializeError
		if errors.As(err, &se) {
			return fmt.Sprintf("error: %s: %s", se.Code, se.Message)
		}
		return "error: " + err.Error()
	}
	return out
}

func TestSerializeGolden(t *testing.T) {
	for _, name := range []string{"shared_join", "sales_report"} {
		t.Run(name, func(t *testing.T) {
			res := testutil.LoadPlan(t, filepath.Join("testdata", "plans", name+".yaml"))
			if len(res.Roots) != 1 {
				t.Fatalf("expected one root, got %v", res.Roots)
			}
			out, err := testSerializer().SerializeQuery(res.Plan, res.Roots[0])
			if err != nil {
				t.Fatalf("SerializeQuery() failed: %v", err)
			}
			testutil.AssertGoldenString(t, name, out)
		})
	}
}
