package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/internal/cli"
	"github.com/sanskrit-coders/docmodel/pkg/config"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := cli.Main(context.Background(), args, cli.Env{Stdout: &stdout, Stderr: &stderr})
	return stdout.String(), err
}

func writeDoc(t *testing.T, dir, name string, doc models.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, models.WriteFile(doc, path))
	return path
}

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"NoCommand", nil, "command required"},
		{"UnknownCommand", []string{"dump"}, "unknown command: dump"},
		{"ConvertWithoutInput", []string{"convert"}, "input file is required"},
		{"ConvertBadFormat", []string{"convert", "-in", "a.json", "-format", "xml"}, "unknown storage format"},
		{"ValidateWithoutFiles", []string{"validate"}, "at least one file"},
		{"DiffOneFile", []string{"diff", "a.json"}, "two files are required"},
		{"StoreWithoutOp", []string{"store"}, "operation required"},
		{"StoreUnknownOp", []string{"store", "list"}, "unknown operation"},
		{"StoreGetWithoutID", []string{"store", "get"}, "get needs at least one argument"},
		{"StoreBadFilter", []string{"store", "-filter", "[1]", "find"}, "filter must be a JSON object"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := cli.Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	cmd, global, err := cli.Parse([]string{"-config", "docmodel.yaml", "diff", "-precision", "3", "a.json", "b.toml"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "docmodel.yaml", global.ConfigPath)
	assert.Equal(t, &cli.DiffCommand{A: "a.json", B: "b.toml", Precision: 3}, cmd)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := writeDoc(t, dir, "rAma.json", models.TextFromString("rAma\nsItA", "sa", "HK"))
	out := filepath.Join(dir, "out", "rAma.toml")

	_, err := run(t, "convert", "-in", in, "-out", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jsonClass = "Text"`)

	stdout, err := run(t, "convert", "-in", out, "-format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jsonClass: Text")

	stdout, err = run(t, "diff", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "are equal")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.yaml", models.NamedEntityFromString("rAma", "sa", ""))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"jsonClass": "Text", "script_renderings": []}`), 0o644))

	stdout, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "good.yaml: ok (1 documents)")

	stdout, err = run(t, "validate", good, bad)
	assert.ErrorIs(t, err, cli.ErrInvalid)
	assert.Contains(t, stdout, "bad.json[0] Text")
	assert.Contains(t, stdout, "script_renderings")
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte(`{"jsonClass": "JsonObject", "_id": "1", "x": 1.0004}`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("jsonClass: JsonObject\n_id: '2'\nx: 1.0001\n"), 0o644))

	stdout, err := run(t, "diff", a, b)
	assert.ErrorIs(t, err, cli.ErrInvalid)
	assert.Contains(t, stdout, "differ at /0/_id")

	_, err = run(t, "diff", "-ignore-id", a, b)
	assert.ErrorIs(t, err, cli.ErrInvalid)

	stdout, err = run(t, "diff", "-ignore-id", "-precision", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "are equal")
}

func TestTypesAndSchema(t *testing.T) {
	stdout, err := run(t, "types")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Contains(t, lines, models.TagAnnotation)
	assert.Contains(t, lines, models.TagNode)

	stdout, err = run(t, "schema", models.TagTarget)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"container_id"`)

	_, err = run(t, "schema", "Nope")
	assert.ErrorIs(t, err, constants.ErrUnknownType)
}

func TestStore(t *testing.T) {
	t.Setenv(config.EnvBackend, config.BackendMemory)
	dir := t.TempDir()
	path := writeDoc(t, dir, "text.json", models.TextFromString("rAma", "sa", "HK"))

	stdout, err := run(t, "store", "put", path)
	require.NoError(t, err)
	fields := strings.Fields(stdout)
	require.Len(t, fields, 2)
	assert.Len(t, fields[0], constants.IDLength)
	assert.Equal(t, models.TagText, fields[1])

	stdout, err = run(t, "store", "-filter", `{"jsonClass": "Text"}`, "find")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", stdout, "every invocation opens a fresh memory store")

	_, err = run(t, "store", "get", "missing")
	assert.ErrorContains(t, err, "no document missing")

	_, err = run(t, "store", "-user", "u1", "delete", "missing")
	assert.NoError(t, err)
}
