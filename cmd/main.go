package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/codec"
	"github.com/aukilabs/dvergr/featureflag"
	"github.com/aukilabs/dvergr/generation"
	dvergrhttp "github.com/aukilabs/dvergr/http"
	"github.com/aukilabs/dvergr/models"
	"github.com/aukilabs/dvergr/service"
	"github.com/aukilabs/dvergr/smoketest"
	"github.com/aukilabs/dvergr/storage/sqlite"
	dwebsocket "github.com/aukilabs/dvergr/websocket"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The Dvergr version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "dvergr_info",
		Help:        "Dvergr information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string           `cli:""        env:"DVERGR_ADDR"                  help:"Listening address for client connections."`
	AdminAddr          string           `cli:""        env:"DVERGR_ADMIN_ADDR"            help:"Admin listening address."`
	PublicEndpoint     string           `cli:""        env:"DVERGR_PUBLIC_ENDPOINT"       help:"The public endpoint where this Dvergr server is reachable."`
	PrivateKey         string           `cli:""        env:"DVERGR_PRIVATE_KEY"           help:"The private key of an Ethereum-compatible wallet used to sign dungeon fingerprints."`
	PrivateKeyFile     string           `cli:""        env:"DVERGR_PRIVATE_KEY_FILE"      help:"The file that contains the private key used to sign dungeon fingerprints."`
	LogLevel           string           `cli:""        env:"DVERGR_LOG_LEVEL"             help:"Log level (debug|info|warning|error)."`
	LogIndent          bool             `cli:""        env:"DVERGR_LOG_INDENT"            help:"Indent logs."`
	Catalog            string           `cli:""        env:"DVERGR_CATALOG"               help:"A catalog file or a directory of .json and .yaml catalogs. Empty uses the built-in catalog."`
	Archive            string           `cli:""        env:"DVERGR_ARCHIVE"               help:"The SQLite database where generated dungeons are archived. Empty disables the archive."`
	StoreCapacity      int              `cli:",hidden" env:"DVERGR_STORE_CAPACITY"        help:"The number of dungeons kept in memory."`
	ClientIdleTimeout  time.Duration    `cli:",hidden" env:"DVERGR_CLIENT_IDLE_TIMEOUT"   help:"Time until an idle client will be disconnected"`
	LogSummaryInterval time.Duration    `cli:",hidden" env:"DVERGR_LOG_SUMMARY_INTERVAL"  help:"The duration between each log summary by connection."`
	Generation         generationConfig `cli:",hidden" env:"-"                            help:"Generation configuration."`
	Events             eventsConfig     `cli:",hidden" env:"-"                            help:"Event pusher configuration."`
	FeatureFlags       []string         `cli:",hidden" env:"DVERGR_FEATURE_FLAGS"         help:"Comma separated feature flags"`
	Version            bool             `cli:""        env:"-"                            help:"Show version."`
	Help               bool             `cli:""        env:"-"                            help:"Show help."`
}

// A floor tree holds up to 2^iterations leaves.
const maxIterations = 16

type generationConfig struct {
	Iterations      int `cli:",hidden" env:"DVERGR_ITERATIONS"       help:"The number of partition passes per floor."`
	StopProbability int `cli:",hidden" env:"DVERGR_STOP_PROBABILITY" help:"The chance, in percent, that a node declines to split."`
	MinAreaSize     int `cli:",hidden" env:"DVERGR_MIN_AREA_SIZE"    help:"The minimum extent of a split child along the divided axis."`
	FloorSpacing    int `cli:",hidden" env:"DVERGR_FLOOR_SPACING"    help:"The vertical distance between two floors."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"DVERGR_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed. Empty disables events."`
	FlushInterval time.Duration `cli:",hidden" env:"DVERGR_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"DVERGR_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"DVERGR_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4100",
		AdminAddr:          ":18290",
		PublicEndpoint:     "http://localhost:4100",
		LogLevel:           logs.InfoLevel.String(),
		StoreCapacity:      models.DefaultStoreCapacity,
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Generation: generationConfig{
			Iterations:      generation.DefaultIterations,
			StopProbability: generation.DefaultFloorStopProbabilityPercent,
			MinAreaSize:     generation.DefaultMinAreaSize,
			FloorSpacing:    generation.DefaultFloorSpacing,
		},
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts Dvergr server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	transport := metrics.HTTPTransport(http.DefaultTransport)

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     transport,
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "dvergr",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	featureFlags := featureflag.New(conf.FeatureFlags)

	dungeonCatalog, err := loadCatalog(conf)
	if err != nil {
		logs.Fatal(err)
	}

	signer, err := loadSigner(conf)
	if err != nil {
		logs.Fatal(errors.New("error loading private key").Wrap(err))
	}

	generator := &generation.Generator{
		Catalog: dungeonCatalog,
		Layout: generation.FloorLayout{
			Iterations:             conf.Generation.Iterations,
			StopProbabilityPercent: conf.Generation.StopProbability,
			MinAreaSize:            conf.Generation.MinAreaSize,
		},
		FloorSpacing: conf.Generation.FloorSpacing,
		Parallel:     featureFlags.IsSet(featureflag.FlagParallelFloors),
	}
	featureFlags.IfSet(featureflag.FlagWeightedRoomTypes, func() {
		generator.RoomTypes = generation.WeightedRoomType{}
	})

	dungeons := &service.Dungeons{
		Generator: generator,
		Store:     &models.DungeonStore{Capacity: conf.StoreCapacity},
		Signer:    signer,
	}

	dungeonHandler := &dvergrhttp.DungeonHandler{
		Dungeons:     dungeons,
		Catalog:      dungeonCatalog,
		FeatureFlags: featureFlags,
	}

	if conf.Archive != "" {
		featureFlags.IfNotSet(featureflag.FlagDisableArchive, func() {
			archive, err := sqlite.Open(ctx, conf.Archive)
			if err != nil {
				logs.Fatal(errors.New("opening archive failed").Wrap(err))
			}

			dungeons.Archive = archive
			dungeonHandler.Archive = archive
		})
	}
	defer func() {
		if archive, ok := dungeons.Archive.(*sqlite.Archive); ok {
			if err := archive.Close(); err != nil {
				logs.Warn(errors.New("closing archive failed").Wrap(err))
			}
		}
	}()

	smokeTest := smoketest.HandleSmokeTest(smoketest.Options{
		Parallel: generator.Parallel,
	})

	var mux http.ServeMux
	dungeonHandler.Register(&mux)

	mux.Handle("/health", dvergrhttp.HandleWithCORS(http.HandlerFunc(dvergrhttp.HandleHealthCheck)))
	mux.Handle("/version", dvergrhttp.HandleWithCORS(http.HandlerFunc(dvergrhttp.HandleVersion(version))))
	mux.Handle("/smoke-test", dvergrhttp.HandleWithCORS(smokeTest))

	readinessCheck := func() bool {
		return ctx.Err() == nil
	}
	mux.Handle("/ready", dvergrhttp.HandleWithCORS(http.HandlerFunc(dvergrhttp.HandleReadyCheck(readinessCheck))))

	mux.Handle("/ws", dvergrhttp.HandleWithCORS(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var h dwebsocket.Handler = &dwebsocket.GenerateHandler{
				Dungeons:          dungeons,
				ClientIdleTimeout: conf.ClientIdleTimeout,
				FeatureFlags:      featureFlags,
			}
			h = dwebsocket.HandlerWithLogs(h, conf.LogSummaryInterval)
			h = dwebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			dwebsocket.Handle(ctx, conn, h)
		},
	}))

	mux.Handle("/ping", websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			io.Copy(ws, ws)
		},
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", dvergrhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.HandleFunc("/ready", dvergrhttp.HandleReadyCheck(readinessCheck))

	entry := logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("dungeon_types", len(dungeonCatalog.DungeonTypes)).
		WithTag("feature_flags", conf.FeatureFlags).
		WithTag("archive", dungeons.Archive != nil)
	if signer != nil {
		entry = entry.WithTag("wallet_address", strings.ToLower(signer.Address()))
	}
	entry.Info("starting dvergr server")

	dvergrhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&mux,
			dvergrhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func loadCatalog(conf config) (*catalog.Catalog, error) {
	if conf.Catalog == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.Load(conf.Catalog)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadSigner returns nil when no private key is configured.
func loadSigner(conf config) (*codec.Signer, error) {
	privateKey := conf.PrivateKey

	if len(conf.PrivateKeyFile) != 0 {
		privateKeyBytes, err := os.ReadFile(conf.PrivateKeyFile)
		if err != nil {
			return nil, errors.New("error loading private key from file").
				WithTag("file_name", conf.PrivateKeyFile).
				Wrap(err)
		}
		privateKey = string(privateKeyBytes)
	}

	privateKey = strings.TrimPrefix(strings.TrimSpace(privateKey), "0x")
	if len(privateKey) == 0 {
		return nil, nil
	}

	return codec.NewSigner(privateKey)
}

func validateConfig(conf config) error {
	if _, err := url.ParseRequestURI(conf.PublicEndpoint); err != nil {
		return errors.New("invalid public endpoint").Wrap(err)
	}

	if len(conf.PrivateKey) != 0 &&
		len(conf.PrivateKeyFile) != 0 {
		return errors.New("have to specify either private key or private key file, not both")
	}

	if conf.StoreCapacity < 0 {
		return errors.New("store capacity cannot be negative").
			WithTag("store_capacity", conf.StoreCapacity)
	}

	if conf.Generation.Iterations < 0 ||
		conf.Generation.Iterations > maxIterations ||
		conf.Generation.StopProbability < 0 ||
		conf.Generation.StopProbability > 100 ||
		conf.Generation.MinAreaSize < 1 {
		return errors.New("invalid generation configuration").
			WithTag("iterations", conf.Generation.Iterations).
			WithTag("max_iterations", maxIterations).
			WithTag("stop_probability", conf.Generation.StopProbability).
			WithTag("min_area_size", conf.Generation.MinAreaSize)
	}

	return nil
}
