package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

const (
	envHost    = "ELASTICINBOX_HOST"
	envPort    = "ELASTICINBOX_PORT"
	envScheme  = "ELASTICINBOX_SCHEME"
	envPath    = "ELASTICINBOX_PATH"
	envProfile = "ELASTICINBOX_PROFILE"
	envAccount = "ELASTICINBOX_ACCOUNT"
)

// Overrides carries values supplied on the command line. Zero values mean
// "not set".
type Overrides struct {
	Profile string
	Host    string
	Port    int
	Scheme  string
	Path    string
	Account string
}

// Resolve merges the stored profile, environment variables and overrides,
// in increasing order of precedence.
func Resolve(o Overrides) (Profile, error) {
	var p Profile

	name := strings.TrimSpace(o.Profile)
	if name == "" {
		name = strings.TrimSpace(os.Getenv(envProfile))
	}
	if name != "" {
		loaded, err := LoadProfile(name)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return Profile{}, fmt.Errorf("profile %q not found", name)
			}
			return Profile{}, err
		}
		p = loaded
	} else if o.Host == "" && os.Getenv(envHost) == "" {
		current, err := CurrentProfile()
		if err != nil {
			return Profile{}, err
		}
		loaded, err := LoadProfile(current)
		if err != nil {
			return Profile{}, err
		}
		p = loaded
	}

	if v := strings.TrimSpace(os.Getenv(envHost)); v != "" {
		p.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(envPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Profile{}, fmt.Errorf("invalid %s %q: %w", envPort, v, err)
		}
		p.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(envScheme)); v != "" {
		p.Scheme = v
	}
	if v := strings.TrimSpace(os.Getenv(envPath)); v != "" {
		p.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(envAccount)); v != "" {
		p.Account = v
	}

	if o.Host != "" {
		p.Host = o.Host
	}
	if o.Port != 0 {
		p.Port = o.Port
	}
	if o.Scheme != "" {
		p.Scheme = o.Scheme
	}
	if o.Path != "" {
		p.Path = o.Path
	}
	if o.Account != "" {
		p.Account = o.Account
	}

	if strings.TrimSpace(p.Host) == "" {
		return Profile{}, ErrNotConfigured
	}
	return p, nil
}

// Options converts the profile into client options.
func (p Profile) Options() api.Options {
	return api.Options{
		Host:   p.Host,
		Port:   p.Port,
		Scheme: p.Scheme,
		Path:   p.Path,
	}
}

// SplitAccount splits "user@domain" into its domain and user parts.
func SplitAccount(account string) (domain, user string, err error) {
	account = strings.TrimSpace(account)
	i := strings.LastIndex(account, "@")
	if i <= 0 || i == len(account)-1 {
		return "", "", validation.Invalid(validation.ErrInvalidAccount, account)
	}
	return account[i+1:], account[:i], nil
}
