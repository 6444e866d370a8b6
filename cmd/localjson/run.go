package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roncuevas/LocalJSON/cache"
	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/logging"
	"github.com/roncuevas/LocalJSON/metrics"
	"github.com/roncuevas/LocalJSON/store"
	"github.com/roncuevas/LocalJSON/store/objectstore"
	"github.com/roncuevas/LocalJSON/watch"
)

const usage = `usage: localjson [flags] <command> [args]

commands:
  get <key>                 print a document
  put <key> <json|->        write a document (- reads stdin)
  rm <key>                  delete a document
  exists <key>              print true or false
  ls [dir]                  list documents in dir
  watch [-every 1s] <key>   print the document each time it changes

flags:
`

// app holds what a command needs.
type app struct {
	store    store.Store
	cached   *cache.Cached
	logger   *logging.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	stdin    io.Reader
	stdout   io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("localjson", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	var (
		configPath = flags.String("config", "", "YAML config file")
		backend    = flags.String("backend", "", "storage backend: local, memory or minio")
		root       = flags.String("root", "", "document directory for the local backend")
		logLevel   = flags.String("log-level", "", "log level: debug, info, warn or error")
		jsonErrors = flags.Bool("json", false, "print errors as JSON")
		noCache    = flags.Bool("no-cache", false, "disable the read cache and write deduplication")
	)
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	report := func(err error) int {
		if *jsonErrors {
			data, _ := json.Marshal(errors.ToJSON(err))
			fmt.Fprintln(stderr, string(data))
		} else {
			fmt.Fprintln(stderr, err.Error())
		}
		return 1
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			return report(err)
		}
		cfg = loaded
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *noCache {
		cfg.Cache = cache.DisabledPolicy()
	}
	if err := cfg.Validate(); err != nil {
		return report(err)
	}

	a, err := newApp(ctx, cfg, stderr)
	if err != nil {
		return report(err)
	}
	a.stdin = stdin
	a.stdout = stdout

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(ctx, cfg.MetricsAddr, a.registry, a.logger)
		defer func() { _ = srv.Close() }()
	}

	if err := a.dispatch(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		return report(err)
	}
	return 0
}

func newApp(ctx context.Context, cfg Config, stderr io.Writer) (*app, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid log level")
	}
	logger := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(cfg.LogFormat),
		Output: stderr,
	})

	var backend store.Store
	switch cfg.Backend {
	case BackendMemory:
		backend = store.NewMemory(store.WithLogger(logger))
	case BackendMinIO:
		obj, err := objectstore.New(cfg.MinIO, objectstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := obj.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		backend = obj
	default:
		local, err := store.NewLocal(cfg.Root, store.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		backend = local
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	cached, err := cache.New(backend,
		cache.WithPolicy(cfg.Cache),
		cache.WithLogger(logger),
		cache.WithRecorder(m))
	if err != nil {
		return nil, err
	}
	m.TrackEntries(cached.Len)

	logger.Debug(ctx, "store ready", "backend", cfg.Backend, "policy", cfg.Cache.String())
	return &app{store: cached, cached: cached, logger: logger, metrics: m, registry: reg}, nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "metrics server stopped", "error", err.Error())
		}
	}()
	return srv
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "get":
		return a.get(ctx, args)
	case "put":
		return a.put(ctx, args)
	case "rm":
		return a.rm(ctx, args)
	case "exists":
		return a.exists(ctx, args)
	case "ls":
		return a.ls(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	default:
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "unknown command"), "command", cmd)
	}
}

func requireArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return errors.Newf(errors.CodeInvalidInput, "%s expects %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	if err := requireArgs("get", args, 1); err != nil {
		return err
	}
	data, err := a.store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, strings.TrimRight(string(data), "\n"))
	return err
}

func (a *app) put(ctx context.Context, args []string) error {
	if err := requireArgs("put", args, 2); err != nil {
		return err
	}
	data := []byte(args[1])
	if args[1] == "-" {
		var err error
		data, err = io.ReadAll(a.stdin)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "failed to read stdin")
		}
	}
	if !store.ValidJSON(data) {
		return errors.New(errors.CodeInvalidInput, "document is not valid JSON")
	}
	return a.store.PutRaw(ctx, args[0], data)
}

func (a *app) rm(ctx context.Context, args []string) error {
	if err := requireArgs("rm", args, 1); err != nil {
		return err
	}
	return a.store.Delete(ctx, args[0])
}

func (a *app) exists(ctx context.Context, args []string) error {
	if err := requireArgs("exists", args, 1); err != nil {
		return err
	}
	ok, err := a.store.Exists(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, ok)
	return err
}

func (a *app) ls(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.Newf(errors.CodeInvalidInput, "ls expects at most 1 argument, got %d", len(args))
	}
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	keys, err := a.store.List(ctx, dir)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintln(a.stdout, k); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	every := flags.Duration("every", watch.DefaultInterval, "poll interval")
	if err := flags.Parse(args); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid watch flags")
	}
	if err := requireArgs("watch", flags.Args(), 1); err != nil {
		return err
	}
	if *every <= 0 {
		return errors.New(errors.CodeInvalidInput, "poll interval must be positive")
	}

	// The watcher polls the backend directly so the read cache never
	// hides changes made by other processes.
	w := watch.New[json.RawMessage](a.cached.Unwrap(), flags.Arg(0),
		watch.WithInterval(*every),
		watch.WithLogger(a.logger),
		watch.WithRecorder(a.metrics))

	for update := range w.Watch(ctx) {
		out := "null"
		if update.Present {
			out = compact(update.Value)
		}
		if _, err := fmt.Fprintln(a.stdout, out); err != nil {
			return err
		}
	}
	return nil
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
