package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/objgen/internal/config"
	"github.com/mcncl/objgen/internal/generator"
	"github.com/mcncl/objgen/internal/registry"
)

func companyRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Declare(registry.TypeDecl{Name: "User", Fields: []registry.FieldDecl{
		{Name: "userId", Type: "long"},
		{Name: "username", Type: "String"},
		{Name: "active", Type: "boolean"},
		{Name: "profile", Type: "Profile"},
		{Name: "roles", Type: "Set<String>"},
	}}))
	require.NoError(t, reg.Declare(registry.TypeDecl{Name: "Profile", Fields: []registry.FieldDecl{
		{Name: "fullName", Type: "String"},
		{Name: "email", Type: "String"},
	}}))
	return reg
}

func TestIntegration_GeneratorFormatter(t *testing.T) {
	jsonInput := `{
		"userId": 123,
		"username": "johndoe",
		"active": true,
		"profile": {
			"fullName": "John Doe",
			"email": "john.doe@example.com"
		},
		"roles": ["admin", "dev"]
	}`

	gen := generator.NewGenerator(companyRegistry(t))
	code, err := gen.GenerateCode("User", jsonInput)
	require.NoError(t, err)

	formatted, err := NewFormatter().Format(code)
	require.NoError(t, err)

	assert.Equal(t, code, formatted, "generator output is already normalized")
	assert.Contains(t, formatted, "Profile profile = new Profile();")
	assert.Contains(t, formatted, "Set<String> rolesCollection = new HashSet<>();")
	assert.Contains(t, formatted, "user.setUserId(123L);")
	assert.Contains(t, formatted, "user.setActive(true);")
	assert.Contains(t, formatted, "user.setProfile(profile);")
}

func TestIntegration_WrappedOutput(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Wrap = true

	gen := generator.NewGeneratorWithConfig(companyRegistry(t), cfg, nil)
	res, err := gen.Generate(t.Context(), "User", `{"username":"x","profile":{"email":"e"}}`)
	require.NoError(t, err)

	formatted, err := NewFormatterWithConfig(cfg.Output).FormatFor(res.Code, Target{TypeName: "User", Root: res.Root})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(formatted, "public static User buildUser() {\n    Profile profile = new Profile();\n"))
	assert.True(t, strings.HasSuffix(formatted, "\n    return user;\n}"))
}
