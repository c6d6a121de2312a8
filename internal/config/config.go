package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"io"
	"net/url"
	"os"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

type JsonUrl struct {
	*url.URL
}

func (j *JsonUrl) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	configUrl, err := url.Parse(s)
	j.URL = configUrl
	return err
}

func (j *JsonUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.URL.String())
}

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

func (j *JsonDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Duration.String())
}

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
	}
	ListeningPort    string
	ListeningAddress string
	Database         struct {
		Driver          string
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		SqlitePath      string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Auth struct {
		SigningKey   string
		TokenTtl     *JsonDuration
		CookieName   string
		SecureCookie bool
	}
	Markdown struct {
		Extensions   []string
		HardWraps    bool
		AllowRawHtml bool
	}
	BitBucket struct {
		Url           *JsonUrl
		User          string
		Password      string
		AccessToken   string
		ProjectName   string
		Repository    string
		Folder        string
		Revision      string
		WebhookSecret string
		SyncOnStartup bool
	}
}

var config *Configuration

// ErrNoSigningKey is returned for a configuration without Auth.SigningKey (or BLOG_SIGNING_KEY).
var ErrNoSigningKey = errors.New("no signing key configured: set Auth.SigningKey or BLOG_SIGNING_KEY")

// InitConfig reads the JSON configuration at path, applies overrides from the
// environment (and a .env file, if present) and fills in defaults.
// The result is also kept as the package-level configuration returned by Config.
func InitConfig(path string) (*Configuration, error) {
	// a missing .env file is fine; real environment variables still apply
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer file.Close()

	c, err := Parse(file)
	if err != nil {
		return nil, err
	}

	config = c
	return config, nil
}

// Parse decodes a configuration from r and applies environment overrides and defaults.
func Parse(r io.Reader) (*Configuration, error) {
	var c Configuration

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyEnvironment(&c)
	applyDefaults(&c)

	if len(c.Auth.SigningKey) == 0 {
		return nil, ErrNoSigningKey
	}

	return &c, nil
}

func applyEnvironment(c *Configuration) {
	if v, ok := os.LookupEnv("BLOG_DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv("BLOG_SIGNING_KEY"); ok {
		c.Auth.SigningKey = v
	}
	if v, ok := os.LookupEnv("BLOG_BITBUCKET_TOKEN"); ok {
		c.BitBucket.AccessToken = v
	}
	if v, ok := os.LookupEnv("BLOG_HOOK_SECRET"); ok {
		c.BitBucket.WebhookSecret = v
	}
	if v, ok := os.LookupEnv("BLOG_LISTENING_PORT"); ok {
		c.ListeningPort = v
	}
}

func applyDefaults(c *Configuration) {
	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = 500
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = 28
	}

	if len(c.Database.Driver) == 0 {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.ConnMaxLifetime == nil {
		c.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}

	if c.Auth.TokenTtl == nil || c.Auth.TokenTtl.Duration <= 0 {
		c.Auth.TokenTtl = &JsonDuration{Duration: 12 * time.Hour}
	}
	if len(c.Auth.CookieName) == 0 {
		c.Auth.CookieName = "__session"
	}

	if len(c.BitBucket.Folder) == 0 {
		c.BitBucket.Folder = "posts/"
	}
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}

func DbHost() string {
	return config.Database.Host
}

func DbName() string {
	return config.Database.DatabaseName
}

func DbUser() string {
	return config.Database.Username
}

func DbPassword() string {
	return config.Database.Password
}
