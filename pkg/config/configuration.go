package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var (
	BiolinksEnvVarPrefix string = "BIOLINKS_"
)

const (
	DefaultHttpPort       uint          = 8000
	DefaultFetchTimeout   time.Duration = 30 * time.Second
	DefaultRequestTimeout time.Duration = 60 * time.Second
)

type BiolinksConfiguration struct {
	HttpPort        uint              `json:"http_port,omitempty" mapstructure:"http_port,omitempty" yaml:"http_port,omitempty"`
	DevelopmentMode bool              `json:"development_mode,omitempty" mapstructure:"development_mode,omitempty" yaml:"development_mode,omitempty"`
	Session         SessionSpec       `json:"session,omitempty" mapstructure:"session,omitempty" yaml:"session,omitempty"`
	Fetchers        FetchersSpec      `json:"fetchers,omitempty" mapstructure:"fetchers,omitempty" yaml:"fetchers,omitempty"`
	Orchestrator    OrchestratorSpec  `json:"orchestrator,omitempty" mapstructure:"orchestrator,omitempty" yaml:"orchestrator,omitempty"`
	Http            HttpSpec          `json:"http,omitempty" mapstructure:"http,omitempty" yaml:"http,omitempty"`
	Groups          map[string]string `json:"groups,omitempty" mapstructure:"groups,omitempty" yaml:"groups,omitempty"`
	Layers          []LayerSpec       `json:"layers,omitempty" mapstructure:"layers,omitempty" yaml:"layers,omitempty"`
}

type SessionSpec struct {
	Secret string `json:"secret,omitempty" mapstructure:"secret,omitempty" yaml:"secret,omitempty"`
}

// FetchersSpec holds the shared adapter settings plus per-adapter parameters that are
// passed verbatim to each adapter's Init.
type FetchersSpec struct {
	Timeout  string            `json:"timeout,omitempty" mapstructure:"timeout,omitempty" yaml:"timeout,omitempty"`
	CacheTTL string            `json:"cache_ttl,omitempty" mapstructure:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`
	Fulcrum  map[string]string `json:"fulcrum,omitempty" mapstructure:"fulcrum,omitempty" yaml:"fulcrum,omitempty"`
	GraphQL  map[string]string `json:"graphql,omitempty" mapstructure:"graphql,omitempty" yaml:"graphql,omitempty"`
	File     map[string]string `json:"file,omitempty" mapstructure:"file,omitempty" yaml:"file,omitempty"`
	SQLite   map[string]string `json:"sqlite,omitempty" mapstructure:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

type OrchestratorSpec struct {
	MaxConcurrency int `json:"max_concurrency,omitempty" mapstructure:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty"`
}

type HttpSpec struct {
	RequestTimeout string `json:"request_timeout,omitempty" mapstructure:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	// LogDir enables request logging to rotated files in this directory.
	LogDir string `json:"log_dir,omitempty" mapstructure:"log_dir,omitempty" yaml:"log_dir,omitempty"`
}

type LayerSpec struct {
	ID         string          `json:"id,omitempty" mapstructure:"id,omitempty" yaml:"id,omitempty"`
	Name       string          `json:"name,omitempty" mapstructure:"name,omitempty" yaml:"name,omitempty"`
	Component  string          `json:"component,omitempty" mapstructure:"component,omitempty" yaml:"component,omitempty"`
	Pages      []PageSpec      `json:"pages,omitempty" mapstructure:"pages,omitempty" yaml:"pages,omitempty"`
	DataSource *DataSourceSpec `json:"data_source,omitempty" mapstructure:"data_source,omitempty" yaml:"data_source,omitempty"`
	ShowWhen   string          `json:"show_when,omitempty" mapstructure:"show_when,omitempty" yaml:"show_when,omitempty"`
}

type PageSpec struct {
	Page           string `json:"page,omitempty" mapstructure:"page,omitempty" yaml:"page,omitempty"`
	DefaultVisible bool   `json:"default_visible,omitempty" mapstructure:"default_visible,omitempty" yaml:"default_visible,omitempty"`
}

type DataSourceSpec struct {
	Type         string            `json:"type,omitempty" mapstructure:"type,omitempty" yaml:"type,omitempty"`
	RequiresAuth string            `json:"requires_auth,omitempty" mapstructure:"requires_auth,omitempty" yaml:"requires_auth,omitempty"`
	Query        string            `json:"query,omitempty" mapstructure:"query,omitempty" yaml:"query,omitempty"`
	TemplateVars []TemplateVarSpec `json:"template_vars,omitempty" mapstructure:"template_vars,omitempty" yaml:"template_vars,omitempty"`
	Select       string            `json:"select,omitempty" mapstructure:"select,omitempty" yaml:"select,omitempty"`
}

// TemplateVarSpec binds a template variable to a caller attribute. A list is used
// instead of a map because viper lower-cases map keys.
type TemplateVarSpec struct {
	Var  string `json:"var,omitempty" mapstructure:"var,omitempty" yaml:"var,omitempty"`
	From string `json:"from,omitempty" mapstructure:"from,omitempty" yaml:"from,omitempty"`
}

func LoadDefaultConfiguration() *BiolinksConfiguration {
	return &BiolinksConfiguration{
		HttpPort: DefaultHttpPort,
		Fetchers: FetchersSpec{
			Timeout: DefaultFetchTimeout.String(),
		},
		Http: HttpSpec{
			RequestTimeout: DefaultRequestTimeout.String(),
		},
	}
}

func LoadRuntimeConfiguration(v *viper.Viper, appDir string) (*BiolinksConfiguration, error) {
	configDir := filepath.Join(appDir, AppConfigDirName)

	v.SetConfigType("yaml")
	v.SetDefault("http_port", DefaultHttpPort)

	configPath := ""
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(configDir, name)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
			break
		}
	}

	if configPath != "" {
		configBytes, err := util.ReplaceEnvVariablesFromPath(configPath, BiolinksEnvVarPrefix)
		if err != nil {
			return nil, err
		}

		err = v.ReadConfig(bytes.NewBuffer(configBytes))
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", GetAppRelativePath(configPath), err)
		}
	} else {
		// No config file found, write the defaults
		defaults := LoadDefaultConfiguration()
		marshalledConfig, err := yaml.Marshal(defaults)
		if err != nil {
			return nil, err
		}

		err = os.MkdirAll(configDir, 0766)
		if err != nil {
			return nil, fmt.Errorf("error initializing %s/config.yaml: %w", AppConfigDirName, err)
		}

		configPath = filepath.Join(configDir, "config.yaml")
		err = os.WriteFile(configPath, marshalledConfig, 0766)
		if err != nil {
			return nil, fmt.Errorf("error initializing %s/config.yaml: %w", AppConfigDirName, err)
		}

		if _, err := os.Stat(configPath); err != nil {
			return nil, errors.New("error initializing " + AppConfigDirName + "/config.yaml")
		}

		err = v.ReadConfig(bytes.NewBuffer(marshalledConfig))
		if err != nil {
			return nil, err
		}
	}

	var config *BiolinksConfiguration
	err := v.Unmarshal(&config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *BiolinksConfiguration) ServerBaseUrl() string {
	return fmt.Sprintf("http://localhost:%d", c.HttpPort)
}

// FetcherParams returns the Init parameters for the named adapter. The shared
// timeout and cache TTL are applied unless the adapter overrides them.
func (c *BiolinksConfiguration) FetcherParams(name string) map[string]string {
	params := map[string]string{
		fetchers.TimeoutParam:  c.Fetchers.Timeout,
		fetchers.CacheTTLParam: c.Fetchers.CacheTTL,
	}
	if params[fetchers.CacheTTLParam] == "" {
		params[fetchers.CacheTTLParam] = fetchers.CacheTTL(c.DevelopmentMode).String()
	}

	var specific map[string]string
	switch name {
	case "fulcrum":
		specific = c.Fetchers.Fulcrum
	case "graphql":
		specific = c.Fetchers.GraphQL
	case "file":
		specific = c.Fetchers.File
	case "sqlite":
		specific = c.Fetchers.SQLite
	}

	for k, v := range specific {
		params[k] = v
	}

	return params
}

func (c *BiolinksConfiguration) FetchTimeout() (time.Duration, error) {
	return parseDuration("fetchers.timeout", c.Fetchers.Timeout, DefaultFetchTimeout)
}

func (c *BiolinksConfiguration) RequestTimeout() (time.Duration, error) {
	return parseDuration("http.request_timeout", c.Http.RequestTimeout, DefaultRequestTimeout)
}

func parseDuration(key string, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", key, raw, err)
	}
	return d, nil
}
