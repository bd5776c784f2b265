package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/models"
)

const (
	companyYAML   = "testdata/company.yaml"
	companySchema = "testdata/company.schema.json"
	departmentIn  = "testdata/samples/department.json"
	departmentOut = "testdata/samples/department.java"
)

// syncBuffer is a bytes.Buffer safe to write from a watching goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newEnv(stdin string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Env{Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func golden(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(departmentOut)
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerate_YAMLRegistry(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Type:          "Department",
		Input:         departmentIn,
	}

	require.NoError(t, cmd.Run(env))
	assert.Equal(t, golden(t), stdout.String())
}

func TestGenerate_JSONSchemaMatchesYAML(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companySchema}},
		Type:          "Department",
		Input:         departmentIn,
	}

	require.NoError(t, cmd.Run(env))
	assert.Equal(t, golden(t), stdout.String())
}

func TestGenerate_ConfigFile(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Config: "testdata/objgen.yml"},
		Input:         departmentIn,
	}

	// root_type and the schema list come from the config file
	require.NoError(t, cmd.Run(env))
	assert.Equal(t, golden(t), stdout.String())
}

func TestGenerate_Stdin(t *testing.T) {
	env, stdout, _ := newEnv(`{"name": "Ada", "age": 36, "status": "RETIRED"}`)
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Type:          "Employee",
	}

	require.NoError(t, cmd.Run(env))
	assert.Equal(t, `Employee employee = new Employee();
employee.setName("Ada");
employee.setAge(36);
employee.setStatus(Status.RETIRED);
`, stdout.String())
}

func TestGenerate_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Department.java")
	env, stdout, stderr := newEnv("")
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Type:          "Department",
		Input:         departmentIn,
		Output:        out,
	}

	require.NoError(t, cmd.Run(env))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Generated code written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, golden(t), string(data))
}

func TestGenerate_Wrap(t *testing.T) {
	env, stdout, _ := newEnv(`{"name": "Ada"}`)
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Type:          "Employee",
		Wrap:          true,
	}

	require.NoError(t, cmd.Run(env))
	assert.Equal(t, `public static Employee buildEmployee() {
    Employee employee = new Employee();
    employee.setName("Ada");

    return employee;
}
`, stdout.String())
}

func TestGenerate_UnresolvedPolicy(t *testing.T) {
	dir := t.TempDir()
	reg := writeFile(t, dir, "holder.yaml", `
types:
  - name: Holder
    fields:
      - name: label
        type: String
      - name: ghost
        type: Ghost
`)
	input := `{"label": "x", "ghost": {"a": 1}}`

	t.Run("comment", func(t *testing.T) {
		env, stdout, stderr := newEnv(input)
		cmd := &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{reg}}, Type: "Holder"}

		require.NoError(t, cmd.Run(env))
		assert.Contains(t, stdout.String(), "// unresolved type Ghost for field holder.ghost")
		assert.Contains(t, stdout.String(), `holder.setLabel("x");`)
		assert.Contains(t, stderr.String(), "unresolved type")
	})

	t.Run("strict", func(t *testing.T) {
		env, stdout, _ := newEnv(input)
		cmd := &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{reg}}, Type: "Holder", Strict: true}

		err := cmd.Run(env)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeResolution))
		assert.Empty(t, stdout.String())
	})
}

func TestGenerate_AliasFlag(t *testing.T) {
	dir := t.TempDir()
	reg := writeFile(t, dir, "team.yaml", `
types:
  - name: Team
    fields:
      - name: crew
        type: List
  - name: Employee
    fields:
      - name: name
        type: String
`)

	env, stdout, _ := newEnv(`{"crew": [{"name": "Ada"}]}`)
	cmd := &GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{reg}, Alias: map[string]string{"crew": "Employee"}},
		Type:          "Team",
	}

	require.NoError(t, cmd.Run(env))
	assert.Contains(t, stdout.String(), "List<Employee> crewCollection = new ArrayList<>();")
	assert.Contains(t, stdout.String(), "crewCollection.add(employee);")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *GenerateCmd
		stdin   string
		errType errors.ErrorType
	}{
		{
			name:    "no registry sources",
			cmd:     &GenerateCmd{Type: "Department", Input: departmentIn},
			errType: errors.ErrorTypeConfig,
		},
		{
			name:    "missing schema file",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{"testdata/missing.yaml"}}, Type: "Department"},
			errType: errors.ErrorTypeConfig,
		},
		{
			name:    "no target type",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}},
			stdin:   `{"name": "x"}`,
			errType: errors.ErrorTypeInput,
		},
		{
			name:    "unknown target type",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}, Type: "Nope"},
			stdin:   `{"name": "x"}`,
			errType: errors.ErrorTypeResolution,
		},
		{
			name:    "root is not an object",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}, Type: "Employee"},
			stdin:   `[1, 2]`,
			errType: errors.ErrorTypeParsing,
		},
		{
			name:    "invalid JSON",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}, Type: "Employee"},
			stdin:   `{"name": }`,
			errType: errors.ErrorTypeParsing,
		},
		{
			name:    "empty stdin",
			cmd:     &GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}, Type: "Employee"},
			stdin:   "  \n",
			errType: errors.ErrorTypeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, stdout, _ := newEnv(tt.stdin)
			err := tt.cmd.Run(env)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()

	t.Run("from file", func(t *testing.T) {
		path := writeFile(t, dir, "in.json", `{"a": 1}`)
		got, err := readInput(path, nil)
		require.NoError(t, err)
		assert.Equal(t, models.JSONObject{"a": json.Number("1")}, got.Root)
	})

	t.Run("nonexistent file", func(t *testing.T) {
		_, err := readInput(filepath.Join(dir, "nope.json"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrFileNotFound)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.json", "   ")
		_, err := readInput(path, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrFileEmpty)
	})

	t.Run("from stdin", func(t *testing.T) {
		got, err := readInput("", strings.NewReader(`{"b": 2}`))
		require.NoError(t, err)
		assert.Equal(t, models.JSONObject{"b": json.Number("2")}, got.Root)
	})

	t.Run("empty stdin", func(t *testing.T) {
		_, err := readInput("", strings.NewReader(""))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrEmptyInput)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
	})

	t.Run("invalid stdin", func(t *testing.T) {
		_, err := readInput("", strings.NewReader(`{"b": }`))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	})
}

func TestWriteOutput_FileError(t *testing.T) {
	env, _, _ := newEnv("")
	err := writeOutput(filepath.Join(t.TempDir(), "missing", "out.java"), "x", env)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOutput))
}

func TestDescribe(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &DescribeCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Types:         []string{"Employee"},
	}

	require.NoError(t, cmd.Run(env))
	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "Employee\n"))
	assert.Regexp(t, `age\s+Leaf\(int32\)`, out)
	assert.Regexp(t, `status\s+Leaf\(enum Status\)`, out)
	assert.Regexp(t, `skills\s+CollectionOf\(Set as Set, string\)`, out)
}

func TestDescribe_AllTypes(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &DescribeCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}}

	require.NoError(t, cmd.Run(env))
	out := stdout.String()
	assert.Contains(t, out, "Department\n")
	assert.Contains(t, out, "Employee\n")
	assert.Less(t, strings.Index(out, "Department"), strings.Index(out, "\nEmployee"))
}

func TestDescribe_Dump(t *testing.T) {
	env, stdout, _ := newEnv("")
	cmd := &DescribeCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Types:         []string{"Department"},
		Dump:          true,
	}

	require.NoError(t, cmd.Run(env))
	assert.Contains(t, stdout.String(), "models.TypeDescriptor")
	assert.Contains(t, stdout.String(), `"priorities"`)
}

func TestDescribe_UnknownType(t *testing.T) {
	env, _, _ := newEnv("")
	cmd := &DescribeCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Types:         []string{"Nope"},
	}

	require.Error(t, cmd.Run(env))
}

func TestSchemaCmd(t *testing.T) {
	env, stdout, _ := newEnv("")
	require.NoError(t, (&SchemaCmd{}).Run(env))

	assert.True(t, json.Valid(stdout.Bytes()))
	assert.Contains(t, stdout.String(), `"types"`)
}

func TestVersionCmd(t *testing.T) {
	env, stdout, _ := newEnv("")
	require.NoError(t, (&VersionCmd{}).Run(env))
	assert.Equal(t, "objgen version "+Version+"\n", stdout.String())
}

func TestKongParse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "generate is the default command",
			args:    []string{"-t", "Department", "-s", companyYAML, "--strict"},
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, "Department", cli.Generate.Type)
				assert.Equal(t, []string{companyYAML}, cli.Generate.Schema)
				assert.True(t, cli.Generate.Strict)
			},
		},
		{
			name:    "alias flag",
			args:    []string{"generate", "--alias", "crew=Employee"},
			command: "generate",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, map[string]string{"crew": "Employee"}, cli.Generate.Alias)
			},
		},
		{
			name:    "watch shares generate flags",
			args:    []string{"watch", "-i", departmentIn, "--package", "./examples/company"},
			command: "watch",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, filepath.IsAbs(cli.Watch.Input))
				assert.Equal(t, []string{"./examples/company"}, cli.Watch.Package)
			},
		},
		{
			name:    "describe with types",
			args:    []string{"describe", "Department", "Employee", "--dump"},
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, []string{"Department", "Employee"}, cli.Describe.Types)
				assert.True(t, cli.Describe.Dump)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := &CLI{}
			parser, err := kong.New(cli, kong.Name("objgen"))
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			if tt.command != "" {
				assert.Equal(t, tt.command, ctx.Command())
			}
			tt.check(t, cli)
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "employee.json", `{"name": "Ada"}`)
	output := filepath.Join(dir, "Employee.java")

	var stderr syncBuffer
	env := &Env{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &stderr}
	cmd := &WatchCmd{GenerateCmd: GenerateCmd{
		RegistryFlags: RegistryFlags{Schema: []string{companyYAML}},
		Type:          "Employee",
		Input:         input,
		Output:        output,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.watch(ctx, env) }()

	contains := func(s string) func() bool {
		return func() bool {
			data, err := os.ReadFile(output)
			return err == nil && strings.Contains(string(data), s)
		}
	}

	require.Eventually(t, contains(`employee.setName("Ada");`), 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(input, []byte(`{"name": "Grace"}`), 0o644))
	require.Eventually(t, contains(`employee.setName("Grace");`), 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, stderr.String(), "Generated code written to")
}

func TestWatch_NeedsInput(t *testing.T) {
	env, _, _ := newEnv("")
	cmd := &WatchCmd{GenerateCmd: GenerateCmd{RegistryFlags: RegistryFlags{Schema: []string{companyYAML}}}}

	err := cmd.watch(t.Context(), env)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoInput)
}
