// Package cli implements the docmodel command. It is kept apart from
// cmd/docmodel so tests can run commands without building the binary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

const usage = `Usage: docmodel [flags] <command> [command flags] [args]

Commands:
  convert   Convert a document file to another format
  validate  Validate the documents in files
  diff      Compare the documents in two files
  types     List registered type tags
  schema    Print the JSON Schema of a type
  store     put, get, find or delete documents in the configured store

Examples:
  docmodel convert -in rAma.json -out rAma.toml
  docmodel validate a.json b.yaml
  docmodel diff -precision 3 a.json a.cbor
  docmodel schema TextAnnotation
  docmodel -config docmodel.yaml store -user u1 put note.json
  docmodel store find -filter '{"jsonClass": "Annotation"}'`

// ErrInvalid is returned when validate or diff finds a problem; the
// details have been written to the output.
var ErrInvalid = errors.New("documents are not valid or differ")

// Env is where commands read and write.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Main parses args and runs the command they name.
func Main(ctx context.Context, args []string, env Env) error {
	cmd, global, err := Parse(args, env.Stderr)
	if err != nil {
		return err
	}
	return cmd.Run(ctx, global, env)
}

// Global holds the flags given before the command name.
type Global struct {
	ConfigPath string
}

// Command is one parsed sub-command with its flags and arguments.
type Command interface {
	Name() string
	Run(ctx context.Context, global *Global, env Env) error
}

// Parse splits args into the global flags and the command.
func Parse(args []string, stderr io.Writer) (Command, *Global, error) {
	flagSet := flag.NewFlagSet("docmodel", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	global := &Global{}
	flagSet.StringVar(&global.ConfigPath, "config", "", "YAML or TOML config file")
	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("command required\n\n%s", usage)
	}

	var cmd interface {
		Command
		parse(args []string, stderr io.Writer) error
	}
	switch rest[0] {
	case "convert":
		cmd = &ConvertCommand{}
	case "validate":
		cmd = &ValidateCommand{}
	case "diff":
		cmd = &DiffCommand{}
	case "types":
		cmd = &TypesCommand{}
	case "schema":
		cmd = &SchemaCommand{}
	case "store":
		cmd = &StoreCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\n%s", rest[0], usage)
	}
	if err := cmd.parse(rest[1:], stderr); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return cmd, global, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("docmodel "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func precisionFlag(fs *flag.FlagSet) *int {
	return fs.Int("precision", collection.NoRounding, "Round floats to this many digits, -1 keeps them")
}

// actorFlags builds the acting user of store commands. No -user means a
// trusted backend process.
type actorFlags struct {
	ids   string
	admin bool
	bot   bool
}

func (a *actorFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.ids, "user", "", "Comma-separated ids of the acting user")
	fs.BoolVar(&a.admin, "admin", false, "The acting user administers the frontend")
	fs.BoolVar(&a.bot, "bot", false, "The acting user is not human")
}

func (a *actorFlags) actor(frontend string) user.User {
	if a.ids == "" {
		return nil
	}
	u := &user.Static{Human: !a.bot}
	for _, id := range strings.Split(a.ids, ",") {
		u.IDs = append(u.IDs, strings.TrimSpace(id))
	}
	if a.admin {
		u.AdminOf = []string{frontend}
	}
	return u
}
