package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainPkg      = "../.."
	companyYAML  = "../../testdata/company.yaml"
	departmentIn = "../../testdata/samples/department.json"
	golden       = "../../testdata/samples/department.java"
)

func objgen(args ...string) *exec.Cmd {
	return exec.Command("go", append([]string{"run", mainPkg}, args...)...)
}

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "Department.java")

	cmd := objgen("-s", companyYAML, "-t", "Department", "-i", departmentIn, "-o", outputFile)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))
	assert.Contains(t, string(output), "Generated code written to")

	generated, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	expected, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(generated))
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	cmd := objgen("generate", "-s", companyYAML, "-t", "Employee")
	cmd.Stdin = strings.NewReader(`{"name": "Jane Smith", "age": 25, "salary": 1.5e3}`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	output := stdout.String()
	assert.Contains(t, output, "Employee employee = new Employee();")
	assert.Contains(t, output, `employee.setName("Jane Smith");`)
	assert.Contains(t, output, "employee.setAge(25);")
	assert.Contains(t, output, "employee.setSalary(1500.0);")
}

// TestCLI_GoPackage loads the target types from Go source
func TestCLI_GoPackage(t *testing.T) {
	cmd := objgen("--package", "github.com/mcncl/objgen/examples/company", "-t", "Department")
	cmd.Stdin = strings.NewReader(`{"name": "Ops", "scores": [3, 1, 2], "tags": ["on-call"]}`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	output := stdout.String()
	assert.Contains(t, output, "int[] scoresArray = new int[3];\nscoresArray[0] = 3;\nscoresArray[1] = 1;\nscoresArray[2] = 2;")
	assert.Contains(t, output, "Set<String> tagsCollection = new HashSet<>();")
	assert.Contains(t, output, "department.setScores(scoresArray);")
}

// TestCLI_ConfigFromEnvironment tests OBJGEN_* overrides
func TestCLI_ConfigFromEnvironment(t *testing.T) {
	cmd := objgen("-s", companyYAML)
	cmd.Env = append(os.Environ(), "OBJGEN_ROOT_TYPE=Employee", "OBJGEN_LOG_FORMAT=json")
	cmd.Stdin = strings.NewReader(`{"name": "Ann", "status": "on leave"}`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	assert.Contains(t, stdout.String(), "Employee employee = new Employee();")
	assert.Contains(t, stdout.String(), "// skipped employee.status:")
	assert.Contains(t, stderr.String(), `"msg":"skipped value"`)
}

// TestCLI_Strict tests that unresolved types fail the run
func TestCLI_Strict(t *testing.T) {
	registry := filepath.Join(t.TempDir(), "holder.yaml")
	require.NoError(t, os.WriteFile(registry, []byte("types:\n  - name: Holder\n    fields:\n      - name: ghost\n        type: Ghost\n"), 0o644))

	cmd := objgen("-s", registry, "-t", "Holder", "--strict")
	cmd.Stdin = strings.NewReader(`{"ghost": {}}`)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail on an unresolved type")
	assert.Contains(t, stderr.String(), "Type resolution error: cannot resolve Ghost for holder.ghost")
}

// TestCLI_InvalidJSON tests the CLI with invalid JSON input
func TestCLI_InvalidJSON(t *testing.T) {
	cmd := objgen("-s", companyYAML, "-t", "Employee")
	cmd.Stdin = strings.NewReader(`{"name": "Invalid JSON, "age": 30}`)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail with invalid JSON")
	assert.Contains(t, stderr.String(), "JSON parsing error")
}

// TestCLI_EmptyInput tests the CLI with empty input
func TestCLI_EmptyInput(t *testing.T) {
	cmd := objgen("-s", companyYAML, "-t", "Employee")
	cmd.Stdin = strings.NewReader("")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr.String(), "empty input")
}

// TestCLI_Describe tests the describe command
func TestCLI_Describe(t *testing.T) {
	cmd := objgen("describe", "-s", companyYAML, "Department")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	assert.Regexp(t, `employees\s+CollectionOf\(List as List, Employee\)`, string(output))
	assert.Regexp(t, `priorities\s+CollectionOf\(Deque as Deque, string\)`, string(output))
}

// TestCLI_Schema tests the schema command
func TestCLI_Schema(t *testing.T) {
	cmd := objgen("schema")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))
	assert.Contains(t, string(output), `"objgen type registry"`)
}

// TestCLI_Version tests the version command
func TestCLI_Version(t *testing.T) {
	cmd := objgen("version")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "objgen version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	cmd := objgen("generate", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	helpOutput := string(output)
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "-t, --type")
	assert.Contains(t, helpOutput, "-i, --input")
	assert.Contains(t, helpOutput, "-o, --output")
	assert.Contains(t, helpOutput, "-s, --schema")
	assert.Contains(t, helpOutput, "--strict")
}
