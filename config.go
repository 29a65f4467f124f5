package ygggo_peardb

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds connection parameters and behavioral options.
type Config struct {
	// Driver allows overriding the sql driver (e.g., "mysql" in prod,
	// "sqlmock" in tests).
	Driver string
	// DSN, when non-empty, is used verbatim and wins over the field-based
	// parameters below.
	DSN string

	Host     string
	Port     int
	Socket   string // unix socket path, wins over Host/Port when set
	Username string
	Password string
	Database string

	// Behavior
	Readonly       bool
	Compression    bool
	TLSMode        string // "", "true", "false", "skip-verify" or a registered config name
	QueryLog       bool
	StmtCache      bool
	StmtCacheSize  int
	ConnectTimeout time.Duration
	WaitTimeout    time.Duration // session wait_timeout, seconds granularity
	Interactive    bool          // ask the server for the interactive timeout

	SlowQueryThreshold time.Duration

	// Extra driver parameters appended to the DSN.
	Params map[string]string
}

const envPrefix = "YGGGO_PEARDB_"

// LoadEnvConfig builds a Config from YGGGO_PEARDB_* environment variables.
// A .env file in the working directory is honored when present.
func LoadEnvConfig() Config {
	_ = godotenv.Load()
	cfg := Config{
		Driver:   envStr("DRIVER", "mysql"),
		DSN:      envStr("DSN", ""),
		Host:     envStr("HOST", "127.0.0.1"),
		Port:     envInt("PORT", 3306),
		Socket:   envStr("SOCKET", ""),
		Username: envStr("USERNAME", ""),
		Password: envStr("PASSWORD", ""),
		Database: envStr("DATABASE", ""),

		Readonly:      envBool("READONLY", false),
		Compression:   envBool("COMPRESS", false),
		TLSMode:       envStr("TLS", ""),
		QueryLog:      envBool("QUERY_LOG", false),
		StmtCache:     envBool("STMT_CACHE", true),
		StmtCacheSize: envInt("STMT_CACHE_SIZE", 64),
	}
	if d := envInt("CONNECT_TIMEOUT", 0); d > 0 {
		cfg.ConnectTimeout = time.Duration(d) * time.Second
	}
	if d := envInt("WAIT_TIMEOUT", 0); d > 0 {
		cfg.WaitTimeout = time.Duration(d) * time.Second
	}
	cfg.Interactive = envBool("INTERACTIVE", false)
	return cfg
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(envPrefix + key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// dsnFromConfig returns the DSN. A non-empty Config.DSN is returned
// unchanged; otherwise the DSN is built from the connection fields, with
// query params in stable order for test determinism.
func dsnFromConfig(c Config) string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	params := make(map[string]string, len(c.Params)+6)
	for k, v := range c.Params {
		params[k] = v
	}
	if c.Compression {
		params["compress"] = "true"
	}
	if c.TLSMode != "" {
		params["tls"] = c.TLSMode
	}
	if c.ConnectTimeout > 0 {
		params["timeout"] = formatDSNDuration(c.ConnectTimeout)
	}
	if c.WaitTimeout > 0 {
		secs := strconv.Itoa(int(c.WaitTimeout / time.Second))
		// unknown DSN params travel to the server as session system variables
		params["wait_timeout"] = secs
		if c.Interactive {
			params["interactive_timeout"] = secs
		}
	}

	auth := ""
	if c.Username != "" {
		if c.Password != "" {
			auth = fmt.Sprintf("%s:%s@", c.Username, c.Password)
		} else {
			auth = c.Username + "@"
		}
	}
	addr := ""
	if c.Socket != "" {
		addr = fmt.Sprintf("unix(%s)", c.Socket)
	} else {
		host := c.Host
		port := c.Port
		if port <= 0 {
			port = 3306
		}
		addr = fmt.Sprintf("tcp(%s:%d)", host, port)
	}
	dsn := fmt.Sprintf("%s%s/%s", auth, addr, url.PathEscape(c.Database))
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if params[k] == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, url.QueryEscape(params[k])))
		}
		if len(parts) > 0 {
			dsn += "?" + strings.Join(parts, "&")
		}
	}
	return dsn
}

func formatDSNDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
