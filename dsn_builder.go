package ygggo_peardb

import (
	"fmt"
	"time"
)

// DSNBuilder provides a fluent interface for assembling a Config and its
// DSN, including unix-socket transport and the behavior toggles this
// library adds on top of the raw driver options.
type DSNBuilder struct {
	cfg Config
}

// NewDSNBuilder creates a builder with MySQL defaults.
func NewDSNBuilder() *DSNBuilder {
	return &DSNBuilder{cfg: Config{
		Driver:        "mysql",
		Host:          "127.0.0.1",
		Port:          3306,
		StmtCacheSize: 64,
		Params:        make(map[string]string),
	}}
}

// Host sets the database host.
func (b *DSNBuilder) Host(host string) *DSNBuilder { b.cfg.Host = host; return b }

// Port sets the database port.
func (b *DSNBuilder) Port(port int) *DSNBuilder { b.cfg.Port = port; return b }

// Socket switches the transport to a unix socket path.
func (b *DSNBuilder) Socket(path string) *DSNBuilder { b.cfg.Socket = path; return b }

// Username sets the database user.
func (b *DSNBuilder) Username(u string) *DSNBuilder { b.cfg.Username = u; return b }

// Password sets the database password.
func (b *DSNBuilder) Password(p string) *DSNBuilder { b.cfg.Password = p; return b }

// Database sets the schema name.
func (b *DSNBuilder) Database(db string) *DSNBuilder { b.cfg.Database = db; return b }

// Readonly enables write-verb enforcement on the connection.
func (b *DSNBuilder) Readonly() *DSNBuilder { b.cfg.Readonly = true; return b }

// EnableCompression enables protocol compression.
func (b *DSNBuilder) EnableCompression() *DSNBuilder { b.cfg.Compression = true; return b }

// RequireTLS enables TLS.
func (b *DSNBuilder) RequireTLS() *DSNBuilder { b.cfg.TLSMode = "true"; return b }

// DisableTLS disables TLS.
func (b *DSNBuilder) DisableTLS() *DSNBuilder { b.cfg.TLSMode = "false"; return b }

// TLSSkipVerify enables TLS without certificate verification.
func (b *DSNBuilder) TLSSkipVerify() *DSNBuilder { b.cfg.TLSMode = "skip-verify"; return b }

// TLSCustom selects a TLS config previously registered with the driver.
func (b *DSNBuilder) TLSCustom(name string) *DSNBuilder { b.cfg.TLSMode = name; return b }

// EnableQueryLog records every command in the process-wide query log.
func (b *DSNBuilder) EnableQueryLog() *DSNBuilder { b.cfg.QueryLog = true; return b }

// EnableStmtCache shares frozen prepared statements across queries.
func (b *DSNBuilder) EnableStmtCache(capacity int) *DSNBuilder {
	b.cfg.StmtCache = true
	b.cfg.StmtCacheSize = capacity
	return b
}

// SetConnectTimeout bounds connection establishment.
func (b *DSNBuilder) SetConnectTimeout(d time.Duration) *DSNBuilder {
	b.cfg.ConnectTimeout = d
	return b
}

// SetWaitTimeout sets the session wait_timeout.
func (b *DSNBuilder) SetWaitTimeout(d time.Duration) *DSNBuilder {
	b.cfg.WaitTimeout = d
	return b
}

// Interactive marks the session interactive so the server applies
// interactive_timeout instead of wait_timeout.
func (b *DSNBuilder) Interactive() *DSNBuilder { b.cfg.Interactive = true; return b }

// SetCharset sets the connection character set.
func (b *DSNBuilder) SetCharset(cs string) *DSNBuilder { return b.SetParam("charset", cs) }

// EnableParseTime makes the driver parse DATE/DATETIME into time.Time.
func (b *DSNBuilder) EnableParseTime() *DSNBuilder { return b.SetParam("parseTime", "true") }

// SetParam sets a raw driver parameter.
func (b *DSNBuilder) SetParam(key, value string) *DSNBuilder {
	b.cfg.Params[key] = value
	return b
}

// Validate checks the builder's configuration.
func (b *DSNBuilder) Validate() error {
	c := b.cfg
	if c.Socket == "" {
		if c.Host == "" {
			return newError(ErrInvalidArgument, "host is required without a socket")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return newError(ErrInvalidArgument, "port must be between 1 and 65535, got %d", c.Port)
		}
	}
	if c.ConnectTimeout < 0 {
		return newError(ErrInvalidArgument, "connect timeout must be positive, got %v", c.ConnectTimeout)
	}
	if c.WaitTimeout < 0 {
		return newError(ErrInvalidArgument, "wait timeout must be positive, got %v", c.WaitTimeout)
	}
	return nil
}

// Build constructs the DSN string.
func (b *DSNBuilder) Build() string { return dsnFromConfig(b.cfg) }

// BuildWithValidation validates, then builds.
func (b *DSNBuilder) BuildWithValidation() (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b.Build(), nil
}

// ToConfig returns the accumulated Config.
func (b *DSNBuilder) ToConfig() Config {
	cfg := b.cfg
	cfg.Params = make(map[string]string, len(b.cfg.Params))
	for k, v := range b.cfg.Params {
		cfg.Params[k] = v
	}
	return cfg
}

// FromConfig seeds a builder from an existing Config.
func FromConfig(cfg Config) *DSNBuilder {
	b := NewDSNBuilder()
	out := cfg
	if out.Params == nil {
		out.Params = make(map[string]string)
	} else {
		params := make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			params[k] = v
		}
		out.Params = params
	}
	if out.Port <= 0 {
		out.Port = 3306
	}
	if out.Driver == "" {
		out.Driver = "mysql"
	}
	b.cfg = out
	return b
}

// String renders the DSN with the password masked, safe for logs.
func (b *DSNBuilder) String() string {
	cfg := b.cfg
	if cfg.Password != "" {
		cfg.Password = "***"
	}
	return fmt.Sprintf("dsn(%s)", dsnFromConfig(cfg))
}
