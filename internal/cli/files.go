package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sanskrit-coders/docmodel/pkg/codec"
	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/models"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
)

// ConvertCommand re-renders the documents of one file in the format of
// another, or on stdout.
type ConvertCommand struct {
	In        string
	Out       string
	Format    codec.Format
	Precision int
}

func (c *ConvertCommand) Name() string { return "convert" }

func (c *ConvertCommand) parse(args []string, stderr io.Writer) error {
	fs := newFlagSet(c.Name(), stderr)
	fs.StringVar(&c.In, "in", "", "Input file (required)")
	fs.StringVar(&c.Out, "out", "", "Output file; stdout when empty")
	format := fs.String("format", string(codec.JSON), "Output format when writing to stdout")
	precision := precisionFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if c.In == "" {
		return fmt.Errorf("input file is required")
	}
	c.Precision = *precision
	if c.Out != "" {
		return nil
	}
	f, err := codec.ParseFormat(*format)
	c.Format = f
	return err
}

func (c *ConvertCommand) Run(_ context.Context, _ *Global, env Env) error {
	opts := []models.Option{models.WithPrecision(c.Precision)}
	docs, err := models.ReadFile(c.In, opts...)
	if err != nil {
		return err
	}

	if c.Out != "" && len(docs) == 1 {
		return models.WriteFile(docs[0], c.Out, opts...)
	}
	f := c.Format
	if c.Out != "" {
		if f, err = codec.FormatOf(c.Out); err != nil {
			return err
		}
	}
	var data []byte
	if len(docs) == 1 {
		data, err = models.Render(docs[0], f, opts...)
	} else {
		data, err = models.RenderAll(docs, f, opts...)
	}
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = env.Stdout.Write(data)
		return err
	}
	return os.WriteFile(c.Out, data, 0o644)
}

// ValidateCommand checks every document of every file against its type's
// rules, without a store.
type ValidateCommand struct {
	Files []string
}

func (c *ValidateCommand) Name() string { return "validate" }

func (c *ValidateCommand) parse(args []string, stderr io.Writer) error {
	fs := newFlagSet(c.Name(), stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Files = fs.Args()
	if len(c.Files) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	return nil
}

func (c *ValidateCommand) Run(ctx context.Context, _ *Global, env Env) error {
	failed := false
	for _, path := range c.Files {
		docs, err := models.ReadFile(path)
		if err != nil {
			fmt.Fprintf(env.Stdout, "%s: %v\n", path, err)
			failed = true
			continue
		}
		ok := true
		for i, doc := range docs {
			if err := models.Validate(ctx, doc, nil, nil); err != nil {
				fmt.Fprintf(env.Stdout, "%s[%d] %s: %v\n", path, i, doc.TypeTag(), err)
				ok = false
			}
		}
		if ok {
			fmt.Fprintf(env.Stdout, "%s: ok (%d documents)\n", path, len(docs))
		}
		failed = failed || !ok
	}
	if failed {
		return ErrInvalid
	}
	return nil
}

// DiffCommand compares the normalized documents of two files.
type DiffCommand struct {
	A, B      string
	Precision int
	IgnoreID  bool
}

func (c *DiffCommand) Name() string { return "diff" }

func (c *DiffCommand) parse(args []string, stderr io.Writer) error {
	fs := newFlagSet(c.Name(), stderr)
	precision := precisionFlag(fs)
	fs.BoolVar(&c.IgnoreID, "ignore-id", false, "Ignore "+constants.IDField+" fields")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("two files are required, got %d", fs.NArg())
	}
	c.A, c.B, c.Precision = fs.Arg(0), fs.Arg(1), *precision
	return nil
}

func (c *DiffCommand) normalized(path string) ([]any, error) {
	docs, err := models.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(docs))
	for i, doc := range docs {
		var m any = models.ToMap(doc)
		if c.IgnoreID {
			m = collection.DeleteKeyRecursively(m, constants.IDField)
		}
		out[i] = m
	}
	return out, nil
}

func (c *DiffCommand) Run(_ context.Context, _ *Global, env Env) error {
	a, err := c.normalized(c.A)
	if err != nil {
		return err
	}
	b, err := c.normalized(c.B)
	if err != nil {
		return err
	}
	if err := collection.ApproxEqual(a, b, c.Precision); err != nil {
		fmt.Fprintf(env.Stdout, "%s and %s differ %v\n", c.A, c.B, err)
		return ErrInvalid
	}
	fmt.Fprintf(env.Stdout, "%s and %s are equal\n", c.A, c.B)
	return nil
}

// TypesCommand lists the registered type tags.
type TypesCommand struct{}

func (c *TypesCommand) Name() string { return "types" }

func (c *TypesCommand) parse(args []string, stderr io.Writer) error {
	return newFlagSet(c.Name(), stderr).Parse(args)
}

func (c *TypesCommand) Run(_ context.Context, _ *Global, env Env) error {
	for _, name := range registry.Default.Names() {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

// SchemaCommand prints the JSON Schema of the named types, or of every
// registered type keyed by tag.
type SchemaCommand struct {
	Tags []string
}

func (c *SchemaCommand) Name() string { return "schema" }

func (c *SchemaCommand) parse(args []string, stderr io.Writer) error {
	fs := newFlagSet(c.Name(), stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Tags = fs.Args()
	return nil
}

func (c *SchemaCommand) Run(_ context.Context, _ *Global, env Env) error {
	schemas := models.Schemas(registry.Default)
	if len(c.Tags) == 0 {
		data, err := codec.Marshal(codec.JSON, schemas)
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(data)
		return err
	}
	for _, tag := range c.Tags {
		fragment, ok := schemas[tag]
		if !ok {
			return fmt.Errorf("%s: %w", tag, constants.ErrUnknownType)
		}
		data, err := codec.Marshal(codec.JSON, fragment)
		if err != nil {
			return err
		}
		if _, err := env.Stdout.Write(data); err != nil {
			return err
		}
	}
	return nil
}
