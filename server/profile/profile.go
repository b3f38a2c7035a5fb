package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Version is the service current released version.
// Semantic versioning: https://semver.org/
var Version = "0.3.0"

// LLM holds the reasoning service settings.
type LLM struct {
	APIKey  string `mapstructure:"api-key"`
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
	// Timeout is the transport timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string `mapstructure:"mode"`
	// Addr is the binding address for server
	Addr string `mapstructure:"addr"`
	// Port is the binding port for server
	Port int `mapstructure:"port"`
	// Data is the data directory
	Data string `mapstructure:"data"`
	// DSN points to where memos stores its own data
	DSN string `mapstructure:"dsn"`
	// Version is the current version of server
	Version string `mapstructure:"-"`
	// Secret signs session tokens.
	Secret string `mapstructure:"secret"`
	// SuperAdminID is never disclosed by author lookups.
	SuperAdminID string `mapstructure:"super-admin-id"`
	// SecretMarker is the value the answer model is told never to reveal.
	SecretMarker string `mapstructure:"secret-marker"`
	// TrustedNetworks are CIDRs exempt from the search rate limit.
	TrustedNetworks []string `mapstructure:"trusted-networks"`

	LLM LLM `mapstructure:"llm"`
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDSN(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(filepath.Dir(os.Args[0]) + "/" + dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing / in case user supplies
	dataDir = strings.TrimRight(dataDir, "/")

	if _, err := os.Stat(dataDir); err != nil {
		return "", fmt.Errorf("unable to access data folder %s, err %w", dataDir, err)
	}

	return dataDir, nil
}

// GetProfile will return a profile for dev or prod.
func GetProfile() (*Profile, error) {
	profile := Profile{}
	if err := viper.Unmarshal(&profile); err != nil {
		return nil, err
	}

	if profile.Mode != "demo" && profile.Mode != "dev" && profile.Mode != "prod" {
		profile.Mode = "demo"
	}

	if profile.Mode == "prod" && profile.Data == "" {
		if runtime.GOOS == "windows" {
			profile.Data = filepath.Join(os.Getenv("ProgramData"), "memoask")
			if _, err := os.Stat(profile.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(profile.Data, 0770); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %s, err: %w", profile.Data, err)
				}
			}
		} else {
			profile.Data = "/var/opt/memoask"
		}
	}

	dataDir, err := checkDSN(profile.Data)
	if err != nil {
		return nil, err
	}

	profile.Data = dataDir
	if profile.DSN == "" {
		profile.DSN = filepath.Join(dataDir, fmt.Sprintf("memoask_%s.db", profile.Mode))
	}
	profile.Version = Version

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate reports settings that cannot be defaulted.
func (p *Profile) Validate() error {
	if p.Mode == "prod" {
		if p.Secret == "" {
			return fmt.Errorf("a session secret is required in prod mode")
		}
		if p.LLM.APIKey == "" {
			return fmt.Errorf("an llm api key is required in prod mode")
		}
	}
	if p.SuperAdminID == "" {
		return fmt.Errorf("super admin id must not be empty")
	}
	return nil
}
