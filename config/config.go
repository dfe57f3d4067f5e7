package config

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/redis/go-redis/v9"

	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

// ServerConfig defines HTTP server configurations
type ServerConfig struct {
	Port  int `koanf:"port"`
	HTTPS struct {
		Cert string `koanf:"cert"`
		Key  string `koanf:"key"`
	}
	Debug bool `koanf:"debug"`
	// InstanceHost is the public host (host[:port]) of the catalog this
	// backend serves. Notification resource URLs are cross-checked
	// against it.
	InstanceHost string `koanf:"instancehost"`
}

// DatabaseConfig related to database
type DatabaseConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	TimeZone string `koanf:"timezone"`
	Pool     struct {
		IdleConnections int           `koanf:"idleconnections"`
		MaxConnections  int           `koanf:"maxconnections"`
		ConnLifeTime    time.Duration `koanf:"connlifetime"`
	}
}

// CacheConfig related to the redis instance backing the reindex queue
type CacheConfig struct {
	Redis struct {
		RedisOptions redis.Options `koanf:"redisoptions"`
	}
}

// SearchConfig related to the visibility-index refresh queue
type SearchConfig struct {
	ReindexQueueKey string `koanf:"reindexqueuekey"`
}

// ParserConfig selects the acquisition-notification parser
type ParserConfig struct {
	Name string `koanf:"name"`
}

// CatalogConfig points at the host catalog's action API
type CatalogConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"apikey"`
	Timeout time.Duration `koanf:"timeout"`
}

// PolicyConfig holds deployment-dependent policy toggles
type PolicyConfig struct {
	// AllowlistOrglessOnly restricts the allowed-users field to private
	// datasets outside an organization, matching older deployments.
	AllowlistOrglessOnly bool `koanf:"allowlistorglessonly"`
	// SearchableDefault is the searchable value assumed when a private
	// dataset does not set the flag.
	SearchableDefault bool `koanf:"searchabledefault"`
}

// AppConfig defines the whole backend configuration
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Search   SearchConfig   `koanf:"search"`
	Parser   ParserConfig   `koanf:"parser"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Policy   PolicyConfig   `koanf:"policy"`
}

// Config - Global variable to export
var Config AppConfig

// Init - Assign global config to decoded config struct
func Init(filePath string) error {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(confmap.Provider(map[string]any{
		"server.port":             8080,
		"search.reindexqueuekey":  "privatedatasets:reindex",
		"catalog.timeout":         "30s",
		"policy.searchabledefault": true,
	}, "."), nil); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return err
	}

	if err := k.Unmarshal("", &Config); err != nil {
		return err
	}

	return ValidateConfig(&Config)
}

// ValidateConfig is for custom validation rules for the configuration
func ValidateConfig(c *AppConfig) error {
	if c.Parser.Name == "" {
		return &errdomain.ConfigError{Option: "parser.name", Message: "not configured"}
	}
	if c.Server.InstanceHost == "" {
		return &errdomain.ConfigError{Option: "server.instancehost", Message: "not configured"}
	}
	return nil
}

var defaultConfigPath = "config/config.yaml"

// ParseConfigFlag allows clients to specify the relative path to the file from
// which the configuration will be loaded.
func ParseConfigFlag() string {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("file", defaultConfigPath, "configuration file")
	flag.Parse()

	return *configPath
}
