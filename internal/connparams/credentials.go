package connparams

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const redacted = "***REDACTED***"

// URLAndCredentials is the immutable result of Build: a connection URL and the
// credentials kept out of it. Empty Username or Password means not supplied.
type URLAndCredentials struct {
	URL      string
	Username string
	Password string
}

// String renders the bundle for diagnostics. The password is never included.
func (c URLAndCredentials) String() string {
	pw := ""
	if c.Password != "" {
		pw = redacted
	}
	return fmt.Sprintf("url=%s username=%s password=%s", c.URL, c.Username, pw)
}

// LogValue implements slog.LogValuer so a logged bundle never leaks the password.
func (c URLAndCredentials) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("url", c.URL),
		slog.String("username", c.Username),
	}
	if c.Password != "" {
		attrs = append(attrs, slog.String("password", redacted))
	}
	return slog.GroupValue(attrs...)
}

// DSN converts the bundle into a data source name for the given database/sql driver.
// MySQL URLs are translated through mysql.Config; other drivers take the URL unchanged.
func (c URLAndCredentials) DSN(driverName string) (string, error) {
	if driverName == "mysql" {
		return c.MySQLDSN()
	}
	return c.URL, nil
}

// MySQLDSN formats the bundle as a go-sql-driver/mysql DSN.
func (c URLAndCredentials) MySQLDSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse connection url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("connection url %q has no host", c.URL)
	}

	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	if len(query) > 0 {
		cfg.Params = make(map[string]string, len(query))
		for k, vs := range query {
			if len(vs) > 0 {
				cfg.Params[k] = vs[len(vs)-1]
			}
		}
	}
	return cfg.FormatDSN(), nil
}
