package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
	"github.com/sduenas/perceval-mozilla/pkg/backend/crates"
	"github.com/sduenas/perceval-mozilla/pkg/integrations/cratesio"
	"github.com/sduenas/perceval-mozilla/pkg/state"
	"github.com/sduenas/perceval-mozilla/pkg/storage"
)

// cratesOpts holds the command-line flags for the crates command.
type cratesOpts struct {
	category    string        // crates or summary
	fromDate    string        // inclusive lower bound on updated_at
	sleepTime   time.Duration // backoff unit on connection loss
	tag         string        // label attached to harvested items
	apiURL      string        // override the registry API base
	apiToken    string        // opaque Authorization header value
	output      string        // JSON Lines destination ("-" = stdout)
	sqlitePath  string        // SQLite archive path (empty = disabled)
	mongoURI    string        // MongoDB archive URI (empty = disabled)
	mongoDB     string        // MongoDB database name
	mongoColl   string        // MongoDB collection name
	incremental bool          // resume from the stored watermark
	stateDir    string        // watermark directory override
	redisAddr   string        // Redis watermark store (empty = file store)
	redisPass   string        // Redis password, config file only
	redisDB     int           // Redis database number, config file only
	configFile  string        // TOML config path
}

// cratesCommand creates the crates subcommand, the CLI surface of the
// crates.io backend.
func (c *CLI) cratesCommand() *cobra.Command {
	opts := cratesOpts{
		category:  string(backend.CategoryCrates),
		sleepTime: cratesio.DefaultSleepTime,
		output:    "-",
	}

	cmd := &cobra.Command{
		Use:   "crates",
		Short: "Fetch package metadata from crates.io",
		Long: `Fetch package metadata from the crates.io registry.

Two categories are available: "crates" walks the alphabetical listing and
emits one enriched record per crate updated since --from-date; "summary"
takes a single snapshot of the registry statistics.

Examples:
  perceval-mozilla crates                              # full listing
  perceval-mozilla crates --from-date 2026-01-01       # incremental window
  perceval-mozilla crates --category summary           # registry snapshot
  perceval-mozilla crates --incremental --sqlite items.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCrates(cmd.Context(), cmd, &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.category, "category", opts.category, `category of items to fetch ("crates" or "summary")`)
	flags.StringVar(&opts.fromDate, "from-date", "", "fetch items updated since this date (inclusive)")
	flags.DurationVar(&opts.sleepTime, "sleep-time", opts.sleepTime, "backoff unit applied when the connection is lost")
	flags.StringVar(&opts.tag, "tag", "", "label attached to harvested items (defaults to the origin)")
	flags.StringVar(&opts.apiURL, "api-url", "", "override the registry API base URL")
	flags.StringVarP(&opts.apiToken, "api-token", "t", "", "value sent as the Authorization header")
	flags.StringVarP(&opts.output, "output", "o", opts.output, `JSON Lines output file ("-" for stdout)`)
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "also archive items into this SQLite database")
	flags.StringVar(&opts.mongoURI, "mongo-uri", "", "also archive items into MongoDB at this URI")
	flags.StringVar(&opts.mongoDB, "mongo-database", "", "MongoDB database for the archive")
	flags.StringVar(&opts.mongoColl, "mongo-collection", "", "MongoDB collection for the archive")
	flags.BoolVar(&opts.incremental, "incremental", false, "start from the stored watermark and update it on success")
	flags.StringVar(&opts.stateDir, "state-dir", "", "watermark directory (defaults to the XDG state dir)")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "keep watermarks in Redis at this address instead of files")
	flags.StringVar(&opts.configFile, "config", "", "TOML configuration file")

	return cmd
}

// applyConfig fills in options the user did not set on the command line.
func (o *cratesOpts) applyConfig(cmd *cobra.Command, cfg Config) {
	changed := cmd.Flags().Changed

	if !changed("api-url") && cfg.APIURL != "" {
		o.apiURL = cfg.APIURL
	}
	if !changed("sleep-time") && cfg.SleepTime.Duration > 0 {
		o.sleepTime = cfg.SleepTime.Duration
	}
	if !changed("tag") && cfg.Tag != "" {
		o.tag = cfg.Tag
	}
	if !changed("output") && cfg.Output != "" {
		o.output = cfg.Output
	}
	if !changed("sqlite") && cfg.Storage.SQLite != "" {
		o.sqlitePath = cfg.Storage.SQLite
	}
	if !changed("mongo-uri") && cfg.Storage.MongoURI != "" {
		o.mongoURI = cfg.Storage.MongoURI
	}
	if !changed("mongo-database") && cfg.Storage.MongoDatabase != "" {
		o.mongoDB = cfg.Storage.MongoDatabase
	}
	if !changed("mongo-collection") && cfg.Storage.MongoCollection != "" {
		o.mongoColl = cfg.Storage.MongoCollection
	}
	if !changed("state-dir") && cfg.State.Dir != "" {
		o.stateDir = cfg.State.Dir
	}
	if !changed("redis-addr") && cfg.State.RedisAddr != "" {
		o.redisAddr = cfg.State.RedisAddr
	}
	o.redisPass = cfg.State.RedisPassword
	o.redisDB = cfg.State.RedisDB
}

func (c *CLI) runCrates(ctx context.Context, cmd *cobra.Command, opts *cratesOpts) error {
	if opts.configFile != "" {
		cfg, err := LoadConfig(opts.configFile)
		if err != nil {
			return err
		}
		opts.applyConfig(cmd, cfg)
	}

	category, err := parseCategory(opts.category)
	if err != nil {
		return err
	}

	b := crates.New(crates.Options{
		APIURL:    opts.apiURL,
		SleepTime: opts.sleepTime,
		Headers:   authHeaders(opts.apiToken),
		Logger:    c.Logger,
	})

	store, err := c.newStateStore(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	fromDate, err := c.resolveFromDate(ctx, opts, store, b, category)
	if err != nil {
		return err
	}

	sinks, err := c.newSinks(ctx, opts)
	if err != nil {
		return err
	}
	defer sinks.Close()

	runID := uuid.NewString()
	started := time.Now().UTC()
	c.Logger.Info("starting fetch", "run", runID, "category", category,
		"from", fromDate.Format(time.RFC3339), "origin", b.Origin())

	prog := newProgress(c.Logger)
	count := 0

	it := b.Fetch(backend.FetchOptions{FromDate: fromDate, Category: category})
	for it.Next(ctx) {
		env, err := backend.Envelop(b, opts.tag, it.Item(), time.Now().UTC())
		if err != nil {
			return err
		}
		if err := sinks.Store(ctx, env); err != nil {
			return err
		}
		count++
		c.Logger.Debug("archived item", "uuid", env.UUID, "category", env.Category)
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("fetch aborted after %d items: %w", count, err)
	}

	if opts.incremental {
		key := state.Key(b.Origin(), string(category))
		if err := store.Save(ctx, key, started); err != nil {
			return fmt.Errorf("update watermark: %w", err)
		}
	}

	prog.done(fmt.Sprintf("Fetched %d %s items", count, category))
	return nil
}

// resolveFromDate picks the fetch window lower bound: an explicit
// --from-date wins, then the stored watermark when --incremental is set,
// then the epoch sentinel.
func (c *CLI) resolveFromDate(ctx context.Context, opts *cratesOpts, store state.Store, b backend.Backend, category backend.Category) (time.Time, error) {
	if opts.fromDate != "" {
		t, err := backend.ParseDateTime(opts.fromDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --from-date: %w", err)
		}
		return t, nil
	}

	if opts.incremental {
		key := state.Key(b.Origin(), string(category))
		t, ok, err := store.Load(ctx, key)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			c.Logger.Debug("resuming from watermark", "from", t.Format(time.RFC3339))
			return t, nil
		}
		c.Logger.Debug("no watermark recorded, fetching everything")
	}

	return backend.DefaultDateTime, nil
}

func (c *CLI) newStateStore(ctx context.Context, opts *cratesOpts) (state.Store, error) {
	if opts.redisAddr != "" {
		return state.NewRedisStore(ctx, state.RedisConfig{
			Addr:     opts.redisAddr,
			Password: opts.redisPass,
			DB:       opts.redisDB,
		})
	}

	dir := opts.stateDir
	if dir == "" {
		var err error
		if dir, err = stateDir(); err != nil {
			return nil, err
		}
	}
	return state.NewFileStore(dir)
}

func (c *CLI) newSinks(ctx context.Context, opts *cratesOpts) (storage.Multi, error) {
	var sinks storage.Multi

	jsonl, err := storage.NewJSONLinesFile(opts.output)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, jsonl)

	if opts.sqlitePath != "" {
		db, err := storage.NewSQLite(opts.sqlitePath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, db)
	}

	if opts.mongoURI != "" {
		m, err := storage.NewMongo(ctx, storage.MongoConfig{
			URI:        opts.mongoURI,
			Database:   opts.mongoDB,
			Collection: opts.mongoColl,
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, m)
	}

	return sinks, nil
}

func parseCategory(s string) (backend.Category, error) {
	switch backend.Category(s) {
	case backend.CategoryCrates, "":
		return backend.CategoryCrates, nil
	case backend.CategorySummary:
		return backend.CategorySummary, nil
	default:
		return "", fmt.Errorf("unknown category %q (expected %q or %q)",
			s, backend.CategoryCrates, backend.CategorySummary)
	}
}

func authHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	// The token is passed through opaquely; the client never interprets it.
	return map[string]string{"Authorization": token}
}
