package e2e_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/objgen/internal/generator"
	"github.com/mcncl/objgen/internal/registry"
	"github.com/mcncl/objgen/internal/schema"
)

func companyRegistry(b *testing.B) *registry.Registry {
	b.Helper()
	reg := registry.New()
	require.NoError(b, schema.LoadInto(reg, companyYAML))
	return reg
}

// generateTreeJSON builds a tree with the given depth where every node has
// width children.
func generateTreeJSON(depth, width int) string {
	var sb strings.Builder
	var node func(level int)
	node = func(level int) {
		fmt.Fprintf(&sb, `{"value": %d`, level)
		if level < depth {
			sb.WriteString(`, "children": [`)
			for i := 0; i < width; i++ {
				if i > 0 {
					sb.WriteByte(',')
				}
				node(level + 1)
			}
			sb.WriteByte(']')
		}
		sb.WriteByte('}')
	}
	node(0)
	return sb.String()
}

// BenchmarkLargeCollection benchmarks departments with many employees
func BenchmarkLargeCollection(b *testing.B) {
	g := generator.NewGenerator(companyRegistry(b))

	sizes := []struct {
		name  string
		count int
	}{
		{"100Employees", 100},
		{"1000Employees", 1000},
		{"10000Employees", 10000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			input := generateDepartmentJSON(b, size.count)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := g.GenerateCode("Department", input)
				require.NoError(b, err)
			}
		})
	}
}

// BenchmarkDeepNesting benchmarks deeply nested self-referencing objects
func BenchmarkDeepNesting(b *testing.B) {
	reg := registry.New()
	require.NoError(b, reg.Declare(registry.TypeDecl{
		Name: "TreeNode",
		Fields: []registry.FieldDecl{
			{Name: "value", Type: "int"},
			{Name: "children", Type: "List<TreeNode>"},
		},
	}))
	g := generator.NewGenerator(reg)

	shapes := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
		{"Depth50Width1", 50, 1},
	}

	for _, shape := range shapes {
		b.Run(shape.name, func(b *testing.B) {
			input := generateTreeJSON(shape.depth, shape.width)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := g.GenerateCode("TreeNode", input)
				require.NoError(b, err)
			}
		})
	}
}
