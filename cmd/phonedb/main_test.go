package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/GlobalPhone/core/dbfile"
	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
)

const metadataPath = "../../core/compiler/testdata/PhoneNumberMetadata.xml"

// Test helper functions

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PHONEDB_PATH", "PHONEDB_TERRITORY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, &out, &errOut, strings.NewReader(stdin))
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("phonedb %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func compileDB(t *testing.T, name string, extra ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	mustRun(t, append([]string{"compile", metadataPath, "--out", path}, extra...)...)
	return path
}

func TestCompileCmd_Run(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		file string
		args []string
	}{
		{"json positional", "global_phone.json", nil},
		{"json named xz", "global_phone.json.xz", []string{"--encoding", "named", "--compress", "xz"}},
		{"yaml gzip", "global_phone.yaml.gz", []string{"--codec", "yaml", "--compress", "gzip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := compileDB(t, tt.file, tt.args...)

			m, err := dbfile.ReadManifest(path)
			if err != nil {
				t.Fatalf("ReadManifest failed: %v", err)
			}
			if m.Regions != 5 || m.Territories != 9 {
				t.Errorf("manifest counts = %d regions, %d territories", m.Regions, m.Territories)
			}

			out := mustRun(t, "--db", path, "-t", "GB", "parse", "020 7946 0958")
			if !strings.Contains(out, "International: +44 20 7946 0958") {
				t.Errorf("parse output missing international form:\n%s", out)
			}

			out = mustRun(t, "verify", path)
			if !strings.Contains(out, "Verified:") || !strings.Contains(out, m.ID) {
				t.Errorf("verify output = %q", out)
			}
		})
	}
}

func TestCompileToStdout(t *testing.T) {
	clearEnv(t)

	out := mustRun(t, "compile", metadataPath)
	var records []any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("len(records) = %d, want 5", len(records))
	}
}

func TestNumberCommands(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json")
	t.Setenv("PHONEDB_PATH", path)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"normalize national", []string{"-t", "GB", "normalize", "020 7946 0958"}, "+442079460958\n"},
		{"normalize default territory", []string{"normalize", "(201) 555-0123"}, "+12015550123\n"},
		{"normalize international", []string{"normalize", "+54 9 11 2345 6789"}, "+5491123456789\n"},
		{"validate valid", []string{"-t", "GB", "validate", "020 7946 0958"}, "true\n"},
		{"validate invalid", []string{"validate", "555-0123"}, "false\n"},
		{"validate garbage", []string{"validate", "hello"}, "false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRun(t, tt.args...); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json")

	out := mustRun(t, "--db", path, "parse", "--json", "+1 506 234 5678")
	var v numberView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("parse --json output: %v", err)
	}
	want := numberView{
		Raw:            "+1 506 234 5678",
		Territory:      "CA",
		CountryCode:    "1",
		NationalNumber: "5062345678",
		Valid:          true,
		Possible:       true,
		National:       "(506) 234-5678",
		International:  "+1 506-234-5678",
		E164:           "+15062345678",
	}
	if v != want {
		t.Errorf("parse --json = %+v, want %+v", v, want)
	}
}

func TestCommandErrors(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json")

	if _, err := runCLI(t, "", "parse", "020 7946 0958"); err == nil || !strings.Contains(err.Error(), "no database") {
		t.Errorf("parse without --db error = %v", err)
	}
	if _, err := runCLI(t, "", "--db", path, "-t", "ZZ", "parse", "020"); !errors.Is(err, apperrors.ErrUnknownTerritory) {
		t.Errorf("parse with unknown territory error = %v", err)
	}
	if _, err := runCLI(t, "", "--db", path, "normalize", "hello"); !errors.Is(err, apperrors.ErrFailedToParse) {
		t.Errorf("normalize garbage error = %v", err)
	}
	if _, err := runCLI(t, "", "--db", path, "--decoder", "yaml", "info"); err != nil {
		t.Errorf("--decoder yaml on JSON text error = %v", err)
	}
	if _, err := runCLI(t, "", "--db", path, "--log-level", "loud", "info"); err == nil {
		t.Error("unknown --log-level should fail")
	}
}

func TestVerifyDetectsChange(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json.xz", "--compress", "xz")

	if err := dbfile.WriteFile(path, []byte("[]\n"), dbfile.CompressionXZ); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, "", "verify", path)
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("verify after change error = %v, want validation failure", err)
	}
}

func TestBatchCmd_Run(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json")

	input := "020 7946 0958\n\n+1 506 234 5678\nhello\n+39 06 6981 2345\n"
	file := filepath.Join(t.TempDir(), "numbers.txt")
	if err := os.WriteFile(file, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  []string
	}{
		{
			name: "normalize file",
			args: []string{"--db", path, "-t", "GB", "batch", file, "--workers", "3"},
			want: []string{
				"020 7946 0958\t+442079460958",
				"+1 506 234 5678\t+15062345678",
				"hello\terror: ",
				"+39 06 6981 2345\t+390669812345",
			},
		},
		{
			name:  "validate stdin",
			args:  []string{"--db", path, "-t", "GB", "batch", "-", "--op", "validate"},
			stdin: input,
			want: []string{
				"020 7946 0958\ttrue",
				"+1 506 234 5678\ttrue",
				"hello\tfalse",
				"+39 06 6981 2345\ttrue",
			},
		},
		{
			name:  "parse stdin single worker",
			args:  []string{"--db", path, "batch", "-", "--op", "parse", "-w", "1"},
			stdin: "+44 20 7946 0958\n",
			want:  []string{"+44 20 7946 0958\t020 7946 0958\t+44 20 7946 0958"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("batch failed: %v", err)
			}
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(tt.want), out)
			}
			for i, want := range tt.want {
				if !strings.HasPrefix(lines[i], want) {
					t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
				}
			}
		})
	}
}

func TestSQLiteExportCmd_Run(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	fromXML := filepath.Join(dir, "from_xml.sqlite")
	out := mustRun(t, "sqlite", "export", metadataPath, "--out", fromXML, "--encoding", "named")
	if !strings.Contains(out, "Regions: 5") {
		t.Errorf("export output = %q", out)
	}

	jsonDB := compileDB(t, "global_phone.json.gz", "--compress", "gzip")
	fromDB := filepath.Join(dir, "from_db.db")
	mustRun(t, "--db", jsonDB, "sqlite", "export", "--out", fromDB)

	// A SQLite file without a SQLite extension is recognised by its header.
	sniffed := filepath.Join(dir, "phone.bin")
	data, err := os.ReadFile(fromDB)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sniffed, data, 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{fromXML, fromDB, sniffed} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			got := mustRun(t, "--db", path, "-t", "AR", "normalize", "011 15-2345-6789")
			if got != "+5491123456789\n" {
				t.Errorf("normalize = %q", got)
			}
			info := mustRun(t, "--db", path, "info")
			if !strings.Contains(info, "SQLite driver:") || !strings.Contains(info, "Territories: 9") {
				t.Errorf("info output = %q", info)
			}
		})
	}
}

func TestInfoCmd_Run(t *testing.T) {
	clearEnv(t)
	path := compileDB(t, "global_phone.json")

	out := mustRun(t, "--db", path, "info", "--json")
	var info databaseInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("info --json output: %v", err)
	}
	if info.Regions != 5 || info.Territories != 9 {
		t.Errorf("info counts = %d regions, %d territories", info.Regions, info.Territories)
	}
	if info.Fingerprint == "" || info.SQLite != nil {
		t.Errorf("info = %+v", info)
	}
	if got := strings.Join(info.Codes[1].Territories, ","); got != "US,CA,BS" {
		t.Errorf("+1 territories = %s", got)
	}
}

func TestExamplesCmd_Run(t *testing.T) {
	clearEnv(t)

	out := mustRun(t, "examples", metadataPath)
	if !strings.Contains(out, "GB\t1212345678\n") || strings.Contains(out, "999") {
		t.Errorf("examples output = %q", out)
	}

	out = mustRun(t, "examples", "--json", metadataPath)
	var examples []map[string]string
	if err := json.Unmarshal([]byte(out), &examples); err != nil {
		t.Fatal(err)
	}
	if len(examples) != 11 {
		t.Errorf("len(examples) = %d, want 11", len(examples))
	}
}

func TestVersionCmd_Run(t *testing.T) {
	clearEnv(t)
	out := mustRun(t, "--log-level", "debug", "--log-format", "json", "version")
	if out != "phonedb version "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestLogsGoToStderr(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "db.json")

	var out, errOut bytes.Buffer
	args := []string{"--log-level", "info", "--log-format", "json", "compile", metadataPath, "--out", path}
	if err := run(args, &out, &errOut, strings.NewReader("")); err != nil {
		t.Fatalf("phonedb compile failed: %v", err)
	}
	if strings.Contains(out.String(), "database written") {
		t.Errorf("stdout carries log records: %q", out.String())
	}
	if !strings.Contains(errOut.String(), `"msg":"database written"`) {
		t.Errorf("stderr = %q, want the database written record", errOut.String())
	}
	if !strings.Contains(errOut.String(), `"operation":"compile"`) {
		t.Errorf("stderr = %q, want the operation attribute", errOut.String())
	}
}
