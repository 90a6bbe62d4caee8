package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sanskrit-coders/docmodel"
	"github.com/sanskrit-coders/docmodel/pkg/codec"
	"github.com/sanskrit-coders/docmodel/pkg/config"
	"github.com/sanskrit-coders/docmodel/pkg/models"
)

// StoreCommand runs one operation against the configured store.
type StoreCommand struct {
	Op     string
	Args   []string
	Filter map[string]any
	Format codec.Format
	actor  actorFlags
}

func (c *StoreCommand) Name() string { return "store" }

func (c *StoreCommand) parse(args []string, stderr io.Writer) error {
	fs := newFlagSet(c.Name(), stderr)
	c.actor.register(fs)
	format := fs.String("format", string(codec.JSON), "Output format")
	filter := fs.String("filter", "", "JSON filter for find")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("operation required: put, get, find or delete")
	}
	c.Op, c.Args = fs.Arg(0), fs.Args()[1:]

	var err error
	if c.Format, err = codec.ParseFormat(*format); err != nil {
		return err
	}
	switch c.Op {
	case "put", "get", "delete":
		if len(c.Args) == 0 {
			return fmt.Errorf("%s needs at least one argument", c.Op)
		}
	case "find":
		if *filter == "" {
			return nil
		}
		v, err := codec.Unmarshal(codec.JSON, []byte(*filter))
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("filter must be a JSON object, got %T", v)
		}
		c.Filter = m
	default:
		return fmt.Errorf("unknown operation: %s", c.Op)
	}
	return nil
}

func (c *StoreCommand) Run(ctx context.Context, global *Global, env Env) error {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		return err
	}
	db, err := docmodel.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	actor := c.actor.actor(cfg.FrontendName)

	switch c.Op {
	case "put":
		for _, path := range c.Args {
			docs, err := models.ReadFile(path)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				stored, err := db.Put(ctx, doc, actor)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(env.Stdout, "%s\t%s\n", stored.Core().ID, stored.TypeTag())
			}
		}
	case "get":
		for _, id := range c.Args {
			doc, err := db.Get(ctx, id)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("no document %s", id)
			}
			if err := c.write(env, []models.Document{doc}); err != nil {
				return err
			}
		}
	case "find":
		docs, err := db.Find(ctx, c.Filter)
		if err != nil {
			return err
		}
		return c.write(env, docs)
	case "delete":
		for _, id := range c.Args {
			if err := db.Delete(ctx, id, actor); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
		}
	}
	return nil
}

func (c *StoreCommand) write(env Env, docs []models.Document) error {
	var data []byte
	var err error
	if len(docs) == 1 && c.Op == "get" {
		data, err = models.Render(docs[0], c.Format)
	} else {
		data, err = models.RenderAll(docs, c.Format)
	}
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(data)
	return err
}
