// Package dsn parses Siodb connection URIs into a normalized descriptor,
// covering the three Siodb schemes (siodb, siodbs, siodbu) and their query
// parameters.
package dsn

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Scheme identifies which transport a URI selects.
type Scheme string

const (
	SchemeTCP    Scheme = "siodb"
	SchemeTLS    Scheme = "siodbs"
	SchemeSocket Scheme = "siodbu"
)

const (
	defaultUser     = "root"
	defaultPort     = 50000
	defaultIdentity = "~/.ssh/id_rsa"
)

// DSN is the normalized connection descriptor produced by Parse.
type DSN struct {
	Scheme       Scheme
	Host         string // network schemes only
	Port         int    // network schemes only
	SocketPath   string // siodbu only
	User         string
	IdentityFile string
	Trace        bool
}

// Parse parses a Siodb connection URI of the form
// "siodb[s]://[user@]host[:port][?identity_file=...&trace=bool]" or
// "siodbu:/absolute/socket/path[?...]".
func Parse(raw string) (*DSN, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dsn: parse %q: %w", raw, err)
	}

	scheme := Scheme(u.Scheme)
	switch scheme {
	case SchemeTCP, SchemeTLS, SchemeSocket:
	default:
		return nil, fmt.Errorf("dsn: unknown scheme %q, want one of siodb, siodbs, siodbu", u.Scheme)
	}

	d := &DSN{
		Scheme:       scheme,
		User:         defaultUser,
		Port:         defaultPort,
		IdentityFile: defaultIdentity,
	}

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		val := values[len(values)-1]
		switch key {
		case "identity_file":
			d.IdentityFile = val
		case "trace":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("dsn: invalid trace value %q: %w", val, err)
			}
			d.Trace = b
		default:
			return nil, fmt.Errorf("dsn: unknown option %q", key)
		}
	}

	if scheme == SchemeSocket {
		// "siodbu:/path" parses with an empty Host and the path in u.Path;
		// a path with no slash after the colon lands in u.Opaque instead.
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("dsn: missing socket path in %q", raw)
		}
		d.SocketPath = path
	} else {
		if u.Hostname() != "" {
			d.Host = u.Hostname()
		} else {
			d.Host = "localhost"
		}
		if u.Port() != "" {
			port, err := strconv.Atoi(u.Port())
			if err != nil {
				return nil, fmt.Errorf("dsn: invalid port %q: %w", u.Port(), err)
			}
			d.Port = port
		}
		if u.User != nil && u.User.Username() != "" {
			d.User = u.User.Username()
		}
	}

	d.IdentityFile = expandHome(d.IdentityFile)
	return d, nil
}

// expandHome resolves a leading "~" against the current user's home
// directory, since the default identity file path ("~/.ssh/id_rsa") would
// otherwise never resolve to a real file.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
