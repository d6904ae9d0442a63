package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"paycore/crypto"
)

// Config drives the payd daemon. Addresses are bech32 strings; the three
// process addresses (admin, gateway, distributor) play the role deployment
// accounts play for the on-chain original.
type Config struct {
	RPCAddress         string `toml:"RPCAddress"`
	DataDir            string `toml:"DataDir"`
	ChainID            int64  `toml:"ChainID"`
	LedgerName         string `toml:"LedgerName"`
	AdminAddress       string `toml:"AdminAddress"`
	GatewayAddress     string `toml:"GatewayAddress"`
	DistributorAddress string `toml:"DistributorAddress"`
	CharityBeneficiary string `toml:"CharityBeneficiary"`
	LogFile            string `toml:"LogFile"`
	Env                string `toml:"Env"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./payd-data"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if strings.TrimSpace(cfg.LedgerName) == "" {
		cfg.LedgerName = "JMZ"
	}
}

// Validate checks the address fields decode and the mandatory ones are set.
func (cfg *Config) Validate() error {
	required := map[string]string{
		"AdminAddress":       cfg.AdminAddress,
		"GatewayAddress":     cfg.GatewayAddress,
		"DistributorAddress": cfg.DistributorAddress,
		"CharityBeneficiary": cfg.CharityBeneficiary,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s is required", field)
		}
		if _, err := crypto.DecodeAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	return nil
}

// Address decodes one of the configured bech32 addresses into its raw form.
func Address(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Raw(), nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	// The generated file still needs the process addresses filled in, so
	// report the gap instead of starting half-configured.
	return nil, fmt.Errorf("config: wrote default config to %s; fill in AdminAddress, GatewayAddress, DistributorAddress and CharityBeneficiary", path)
}
