package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/mcncl/objgen/internal/config"
	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/formatter"
	"github.com/mcncl/objgen/internal/generator"
	"github.com/mcncl/objgen/internal/gosource"
	"github.com/mcncl/objgen/internal/logging"
	"github.com/mcncl/objgen/internal/models"
	"github.com/mcncl/objgen/internal/parser"
	"github.com/mcncl/objgen/internal/registry"
	"github.com/mcncl/objgen/internal/schema"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate construction statements from a JSON sample."`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the input file changes."`
	Describe DescribeCmd `cmd:"" help:"Print the resolved fields of registered types."`
	Schema   SchemaCmd   `cmd:"" help:"Print the JSON Schema of the YAML registry file format."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Env holds the streams commands read from and write to.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// RegistryFlags select the configuration and the type registry sources.
type RegistryFlags struct {
	Config  string            `help:"Path to config file. Defaults to the nearest .objgen.yml." short:"c" type:"path"`
	Schema  []string          `help:"YAML registry or JSON Schema file (repeatable)." short:"s"`
	Package []string          `help:"Go package pattern to load target types from (repeatable)."`
	Alias   map[string]string `help:"Element type for a collection field, as field=Type (repeatable)."`
	Debug   bool              `help:"Enable debug logging." short:"d"`
}

// session is the loaded configuration and registry of one command.
type session struct {
	cfg    *config.Config
	reg    *registry.Registry
	logger *slog.Logger
}

func (f *RegistryFlags) overrides() *config.Config {
	return &config.Config{
		Registry:  config.RegistryConfig{Schemas: f.Schema, Packages: f.Package},
		Inference: config.InferenceConfig{Aliases: f.Alias},
		Dev:       config.DevConfig{Debug: f.Debug},
	}
}

// setup loads the configuration (file, environment, then flags) and
// populates the registry from every configured source.
func (f *RegistryFlags) setup(ctx context.Context, env *Env, override *config.Config) (*session, error) {
	base, err := config.Load(f.Config)
	if err != nil {
		return nil, err
	}
	cfg := config.MergeConfigs(base, override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(env.Stderr, cfg.Dev.LogFormat, cfg.Dev.Debug)

	reg := registry.New()
	for _, path := range cfg.Registry.Schemas {
		if err := schema.LoadInto(reg, path); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to load schema %s: %v", path, err), err)
		}
		logger.Debug("loaded schema", "path", path)
	}
	if len(cfg.Registry.Packages) > 0 {
		summary, err := gosource.NewLoader("", logger).LoadInto(ctx, reg, cfg.Registry.Packages...)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to load Go packages: %v", err), err)
		}
		logger.Debug("loaded packages", "types", len(summary.Types), "enums", len(summary.Enums), "skipped", len(summary.Skipped))
	}

	if len(reg.Names()) == 0 {
		return nil, errors.NewConfigError("no target types registered: pass --schema or --package, or list sources under registry in the config file", nil)
	}

	return &session{cfg: cfg, reg: reg, logger: logger}, nil
}

// GenerateCmd generates construction statements for one JSON sample.
type GenerateCmd struct {
	RegistryFlags `embed:""`

	Type   string `help:"Target type name. Defaults to root_type from the config." short:"t"`
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Strict bool   `help:"Fail on unresolved types instead of emitting a comment."`
	Wrap   bool   `help:"Wrap the statements in a builder method."`
}

func (c *GenerateCmd) overrides() *config.Config {
	override := c.RegistryFlags.overrides()
	override.RootType = c.Type
	override.Output.Wrap = c.Wrap
	if c.Strict {
		override.Policy.Unresolved = config.PolicyAbort
	}
	return override
}

func (c *GenerateCmd) Run(env *Env) error {
	ctx := context.Background()
	s, err := c.setup(ctx, env, c.overrides())
	if err != nil {
		return err
	}

	input, err := readInput(c.Input, env.Stdin)
	if err != nil {
		return err
	}

	code, err := s.generate(ctx, input)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, code, env)
}

// generate runs the generator and formatter for the configured root type.
func (s *session) generate(ctx context.Context, input models.IntermediateRepresentation) (string, error) {
	typeName := s.cfg.RootType
	if typeName == "" {
		return "", errors.NewInputError("no target type: pass --type or set root_type in the config file", nil)
	}

	gen := generator.NewGeneratorWithConfig(s.reg, s.cfg, s.logger)
	res, err := gen.Build(logging.WithRun(ctx, typeName), typeName, input)
	if err != nil {
		return "", err
	}
	if len(res.Diagnostics) > 0 {
		s.logger.Info("generated with diagnostics", "type", typeName, "count", len(res.Diagnostics))
	}

	f := formatter.NewFormatterWithConfig(s.cfg.Output)
	code, err := f.FormatFor(res.Code, formatter.Target{TypeName: typeName, Root: res.Root})
	if err != nil {
		return "", errors.NewGenerateError("failed to format generated statements", err)
	}
	return code, nil
}

// readInput parses JSON from a file or from stdin
func readInput(path string, stdin io.Reader) (models.IntermediateRepresentation, error) {
	if path != "" {
		return parser.ParseFile(path)
	}

	// Refuse to block on an interactive terminal
	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	ir, err := parser.Parse(stdin)
	if stderrors.Is(err, errors.ErrEmptyInput) {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return ir, err
}

// writeOutput writes code to a file or stdout
func writeOutput(path, code string, env *Env) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(code+"\n"), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(env.Stderr, "Generated code written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(env.Stdout, code); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// DescribeCmd prints resolved type descriptors.
type DescribeCmd struct {
	RegistryFlags `embed:""`

	Types []string `arg:"" optional:"" help:"Types to describe. All registered types when omitted."`
	Dump  bool     `help:"Dump the raw descriptors."`
}

func (c *DescribeCmd) Run(env *Env) error {
	s, err := c.setup(context.Background(), env, c.overrides())
	if err != nil {
		return err
	}

	names := c.Types
	if len(names) == 0 {
		names = s.reg.Names()
	}

	for i, name := range names {
		desc, err := s.reg.Resolve(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		if c.Dump {
			spew.Fdump(env.Stdout, desc)
			continue
		}

		fmt.Fprintln(env.Stdout, desc.Name)
		tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
		for _, f := range desc.Fields {
			fmt.Fprintf(tw, "  %s\t%s\n", f.Name, f.Capability)
		}
		if err := tw.Flush(); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
	}
	return nil
}

// SchemaCmd prints the JSON Schema of registry files.
type SchemaCmd struct{}

func (c *SchemaCmd) Run(env *Env) error {
	data, err := json.MarshalIndent(schema.RegistryFileSchema(), "", "  ")
	if err != nil {
		return errors.NewOutputError("failed to encode schema", err)
	}
	fmt.Fprintln(env.Stdout, string(data))
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Stdout, "objgen version %s\n", Version)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("objgen"),
		kong.Description("Generate object construction code from a JSON sample and type metadata."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&Env{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: objgen --help\n")
		os.Exit(1)
	}
}
