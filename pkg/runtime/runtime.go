package runtime

import (
	"fmt"
	"log"
	"sync"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/environment"
	biolinks_http "github.com/biolinks/biolinks/pkg/http"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"github.com/biolinks/biolinks/pkg/session"
	"github.com/biolinks/biolinks/pkg/version"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// dataServer is the part of the HTTP server the runtime drives.
type dataServer interface {
	Start() error
	Shutdown() error
	SetOrchestrator(o *orchestrator.Orchestrator)
}

type BiolinksRuntime struct {
	config *config.BiolinksConfiguration
	viper  *viper.Viper

	mu      sync.Mutex
	env     *environment.Environment
	server  dataServer
	watcher *configWatcher
}

var (
	runtime *BiolinksRuntime
	zaplog  *zap.Logger = loggers.ZapLogger()
)

func GetBiolinksRuntime() *BiolinksRuntime {
	if runtime == nil {
		runtime = &BiolinksRuntime{
			viper: viper.New(),
		}
	}
	return runtime
}

func (r *BiolinksRuntime) LoadConfig() error {
	var err error
	if r.config == nil {
		r.config, err = config.LoadRuntimeConfiguration(r.viper, config.AppPath())
	}

	return err
}

func (r *BiolinksRuntime) Config() *config.BiolinksConfiguration {
	return r.config
}

func (r *BiolinksRuntime) BindFlags(developmentFlag *pflag.Flag, portFlag *pflag.Flag) error {
	if developmentFlag != nil {
		if err := r.viper.BindPFlag("development_mode", developmentFlag); err != nil {
			return err
		}
	}
	if portFlag != nil {
		if err := r.viper.BindPFlag("http_port", portFlag); err != nil {
			return err
		}
	}
	return nil
}

// Run loads configuration, builds the environment and starts serving. In
// development mode configuration changes are picked up without a restart.
func (r *BiolinksRuntime) Run() error {
	err := r.LoadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Loading Biolinks runtime ...")

	if r.config.Session.Secret == "" {
		return session.ErrMissingSecret
	}

	requestTimeout, err := r.config.RequestTimeout()
	if err != nil {
		return err
	}

	env, err := environment.NewEnvironment(r.config)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.env = env
	r.server = biolinks_http.NewServer(
		biolinks_http.ServerConfig{Port: r.config.HttpPort, RequestTimeout: requestTimeout, LogDir: r.config.Http.LogDir},
		env.Orchestrator,
		session.NewProvider(r.config.Session.Secret),
		env.Metrics,
	)
	r.mu.Unlock()

	err = r.server.Start()
	if err != nil {
		return err
	}

	r.printStartupBanner()

	if r.config.DevelopmentMode {
		r.watcher, err = watchConfig(config.AppBiolinksPath(), r.reload)
		if err != nil {
			zaplog.Sugar().Errorf("error watching configuration: %s", err.Error())
			return err
		}
	}

	return nil
}

// reload rebuilds the environment from the configuration on disk and swaps it
// in. It reads through r.viper so flags bound at startup still override the
// file. A configuration that fails to load leaves the running one in place.
func (r *BiolinksRuntime) reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := config.LoadRuntimeConfiguration(r.viper, config.AppPath())
	if err != nil {
		return fmt.Errorf("error reloading configuration: %w", err)
	}

	env, err := environment.NewEnvironmentWithMetrics(cfg, r.env.Metrics)
	if err != nil {
		return fmt.Errorf("error reloading configuration: %w", err)
	}

	r.server.SetOrchestrator(env.Orchestrator)
	previous := r.env
	r.env = env
	r.config = cfg

	if err := previous.Close(); err != nil {
		zaplog.Sugar().Debug(err.Error())
	}

	fmt.Printf("Reloaded %d layers\n", len(env.Layers.Layers()))
	return nil
}

func (r *BiolinksRuntime) Shutdown() {
	log.Println("Shutting down...")

	r.mu.Lock()
	defer r.mu.Unlock()

	wg := new(sync.WaitGroup)

	if r.watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.watcher.Close(); err != nil {
				zaplog.Sugar().Debug(err.Error())
			}
		}()
	}

	if r.server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.server.Shutdown(); err != nil {
				zaplog.Sugar().Debug(err.Error())
			}
		}()
	}

	wg.Wait()

	if r.env != nil {
		if err := r.env.Close(); err != nil {
			zaplog.Sugar().Debug(err.Error())
		}
	}

	loggers.ZapLoggerSync()
}

func (r *BiolinksRuntime) printStartupBanner() {
	fmt.Printf("- Runtime version: %s\n", version.Version())
	for _, page := range r.env.Layers.Pages() {
		fmt.Printf("- Page %s: %d layers\n", aurora.BrightCyan(page.ID), len(page.Layers))
	}
	if r.config.DevelopmentMode {
		fmt.Print("- ")
		fmt.Println(aurora.Yellow("Development mode"))
	}
	fmt.Print("- ")
	fmt.Println(aurora.Green(fmt.Sprintf("Listening on %s", r.config.ServerBaseUrl())))
	fmt.Println()
	fmt.Println("Use Ctrl-C to stop")
}
