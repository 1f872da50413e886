package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/craprotocol/echo/internal/services/ledger"
	"github.com/craprotocol/echo/internal/storage"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

var mirrorNodeURLs = map[ledger.Network]string{
	ledger.NetworkTestnet:    "https://testnet.mirrornode.hedera.com/api/v1/graphql",
	ledger.NetworkMainnet:    "https://mainnet-public.mirrornode.hedera.com/api/v1/graphql",
	ledger.NetworkPreviewnet: "https://previewnet.mirrornode.hedera.com/api/v1/graphql",
}

type Config struct {
	Network        string `env:"HEDERA_NETWORK,default=testnet"`
	OperatorID     string `env:"OPERATOR_ID"`
	OperatorKey    string `env:"OPERATOR_KEY"`
	ContractID     string `env:"CONTRACT_ID"`
	Acknowledgment string `env:"ACK_STRING"`
	Gas            uint64 `env:"TRANSFER_GAS,default=200000"`
	MirrorNodeURL  string `env:"MIRROR_NODE_URL"`
	PageSize       int    `env:"PAGE_SIZE,default=100"`
	FromTimestamp  string `env:"FROM_TIMESTAMP"`
	ToTimestamp    string `env:"TO_TIMESTAMP"`
	APIKey         string `env:"API_KEY"`
	SentryURL      string `env:"SENTRY_URL"`
	DiscordURL     string `env:"DISCORD_URL"`
}

// FileConfig is the optional JSON config file. Set fields override the
// environment.
type FileConfig struct {
	Network        string  `json:"network"`
	ContractID     string  `json:"contract_id"`
	Acknowledgment string  `json:"acknowledgment"`
	MirrorNodeURL  string  `json:"mirror_node_url"`
	PageSize       int     `json:"page_size"`
	From           *string `json:"from"`
	To             *string `json:"to"`
}

func New(ctx context.Context, envpath, confpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	return NewWithLookuper(ctx, envconfig.OsLookuper(), confpath)
}

// NewWithLookuper builds a config from l instead of the process environment,
// which allows several independent configs in one process.
func NewWithLookuper(ctx context.Context, l envconfig.Lookuper, confpath string) (*Config, error) {
	cfg := &Config{}
	err := envconfig.ProcessWith(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	if confpath != "" {
		// does the config file exist
		exists := storage.Exists(confpath)
		if !exists {
			return nil, fmt.Errorf("%s not found", confpath)
		}

		b, err := storage.Read(confpath)
		if err != nil {
			return nil, err
		}

		fileconf := &FileConfig{}
		err = json.Unmarshal(b, fileconf)
		if err != nil {
			return nil, err
		}

		cfg.apply(fileconf)
	}

	if cfg.Acknowledgment == "" {
		cfg.Acknowledgment = cra.DefaultAcknowledgment
	}

	if cfg.MirrorNodeURL == "" {
		cfg.MirrorNodeURL = mirrorNodeURLs[ledger.Network(cfg.Network)]
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) apply(f *FileConfig) {
	if f.Network != "" {
		c.Network = f.Network
	}
	if f.ContractID != "" {
		c.ContractID = f.ContractID
	}
	if f.Acknowledgment != "" {
		c.Acknowledgment = f.Acknowledgment
	}
	if f.MirrorNodeURL != "" {
		c.MirrorNodeURL = f.MirrorNodeURL
	}
	if f.PageSize != 0 {
		c.PageSize = f.PageSize
	}
	if f.From != nil {
		c.FromTimestamp = *f.From
	}
	if f.To != nil {
		c.ToTimestamp = *f.To
	}
}

func (c *Config) Validate() error {
	if !ledger.Network(c.Network).Valid() {
		return fmt.Errorf("unsupported network %q (must be one of: testnet, mainnet, previewnet)", c.Network)
	}

	if c.ContractID == "" {
		return errors.New("CONTRACT_ID is required")
	}

	if c.PageSize < 0 || c.PageSize > cra.MaxPageSize {
		return fmt.Errorf("page size must be at most %d, got %d", cra.MaxPageSize, c.PageSize)
	}

	_, err := c.Window()
	return err
}

// HasOperator reports whether credentials for submitting transfers are set.
func (c *Config) HasOperator() bool {
	return c.OperatorID != "" && c.OperatorKey != ""
}

// Window parses the configured audit time window. Empty bounds are open.
func (c *Config) Window() (cra.Window, error) {
	var w cra.Window

	if c.FromTimestamp != "" {
		t, err := time.Parse(time.RFC3339, c.FromTimestamp)
		if err != nil {
			return w, fmt.Errorf("FROM_TIMESTAMP: %w", err)
		}
		w.From = &t
	}

	if c.ToTimestamp != "" {
		t, err := time.Parse(time.RFC3339, c.ToTimestamp)
		if err != nil {
			return w, fmt.Errorf("TO_TIMESTAMP: %w", err)
		}
		w.To = &t
	}

	return w, w.Validate()
}
