package transformer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"tripetl/internal/table"
	"tripetl/internal/transformer/builtin"
)

const stagedHeader = "VendorID,lpep_pickup_datetime,lpep_dropoff_datetime,PULocationID,DOLocationID,trip_distance,payment_type\n"

func TestChain_DefaultOrderAndResult(t *testing.T) {
	in := table.New([]string{"VendorID", "lpep_pickup_datetime", "lpep_dropoff_datetime", "PULocationID", "trip_distance", "payment_type"})
	in.Rows = [][]table.Value{{
		table.Present("2"),
		table.Present("2023-01-01 00:00:00"),
		table.Present("2023-01-01 00:15:30"),
		table.Present("132"),
		table.Present("10.0"),
		table.Present("1"),
	}}

	out, err := Default().Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	wantCols := []string{"vendor_i_d", "lpep_pickup_datetime", "lpep_dropoff_datetime", "pu_location_id", "trip_distance", "payment_type", "trip_durasi"}
	if diff := cmp.Diff(wantCols, out.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	row := out.Rows[0]
	if row[5].String() != "Credit Card" || row[6].String() != "15.5" {
		t.Fatalf("row = %#v", row)
	}
	if km, _ := row[4].Float64(); km < 16.0933 || km > 16.0935 {
		t.Fatalf("distance = %v", km)
	}
}

/*
TestChain_FailureLeavesInputUntouched checks that a step error is wrapped
with the step name and that the caller's table is never half transformed.
*/
func TestChain_FailureLeavesInputUntouched(t *testing.T) {
	in := table.New([]string{"VendorID", "trip_distance", "payment_type"})
	in.Rows = [][]table.Value{{table.Present("1"), table.Present("2"), table.Present("1")}}
	before := in.Clone()

	out, err := Default().Apply(in)
	var mf *builtin.MissingFieldError
	if !errors.As(err, &mf) || mf.Field != builtin.PickupColumn {
		t.Fatalf("err = %v, want MissingFieldError(pickup)", err)
	}
	if out != nil {
		t.Fatalf("out = %#v, want nil on error", out)
	}
	if !strings.HasPrefix(err.Error(), "trip_duration: ") {
		t.Fatalf("err %q not prefixed with step name", err)
	}
	if diff := cmp.Diff(before, in, cmp.AllowUnexported(table.Value{})); diff != "" {
		t.Fatalf("input mutated:\n%s", diff)
	}
}

func newStage(t *testing.T) *Stage {
	t.Helper()
	root := t.TempDir()
	s := &Stage{
		StagingDir: filepath.Join(root, "staging"),
		OutputDir:  filepath.Join(root, "result"),
		Job:        "test",
		Log:        zerolog.Nop(),
	}
	if err := os.MkdirAll(s.StagingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return s
}

func stage(t *testing.T, s *Stage, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(s.StagingDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

/*
TestStage_Transform covers the per-file rules in one staging dir:

  - a.csv is transformed and written,
  - empty.csv (zero bytes) and header.csv (zero rows) are skipped,
  - bad.csv fails on an unparseable timestamp and writes nothing,
  - a sub-directory is skipped.
*/
func TestStage_Transform(t *testing.T) {
	s := newStage(t)
	stage(t, s, "a.csv", stagedHeader+"2,2023-01-01 00:00:00,2023-01-01 00:15:30,132,138,10.0,2\n")
	stage(t, s, "bad.csv", stagedHeader+"2,soon,2023-01-01 00:15:30,1,1,1,1\n")
	stage(t, s, "empty.csv", "")
	stage(t, s, "header.csv", stagedHeader)
	if err := os.Mkdir(filepath.Join(s.StagingDir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	st, err := s.Transform(context.Background())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if st.Written != 1 || st.Failed != 1 || st.Skipped != 3 || st.Rows != 1 {
		t.Fatalf("stats = %+v", st)
	}

	got, err := os.ReadFile(filepath.Join(s.OutputDir, "a.csv"))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(got)), "\n")
	if lines[0] != "vendor_i_d,lpep_pickup_datetime,lpep_dropoff_datetime,pu_location_id,do_location_id,trip_distance,payment_type,trip_durasi" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], ",Cash,15.5") {
		t.Fatalf("row = %q", lines[1])
	}
	for _, name := range []string{"bad.csv", "empty.csv", "header.csv"} {
		if _, err := os.Stat(filepath.Join(s.OutputDir, name)); err == nil {
			t.Fatalf("%s should not be written", name)
		}
	}
}

func TestStage_TransformOverwritesIdentically(t *testing.T) {
	s := newStage(t)
	stage(t, s, "a.csv", stagedHeader+"1,2023-01-01 00:00:00,2023-01-01 00:01:00,1,2,1.0,9\n")

	if _, err := s.Transform(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	dst := filepath.Join(s.OutputDir, "a.csv")
	first, _ := os.ReadFile(dst)
	if err := os.WriteFile(dst, []byte("stale"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	st, err := s.Transform(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if st.Written != 1 {
		t.Fatalf("second run stats = %+v", st)
	}
	second, _ := os.ReadFile(dst)
	if string(first) != string(second) {
		t.Fatalf("rerun output differs:\n%s\n---\n%s", first, second)
	}
}

func TestStage_MissingStagingDir(t *testing.T) {
	s := newStage(t)
	s.StagingDir = filepath.Join(s.StagingDir, "nope")
	if _, err := s.Transform(context.Background()); err == nil {
		t.Fatalf("expected error for missing staging dir")
	}
}
