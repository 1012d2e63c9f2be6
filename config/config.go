package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/bookkeeper/book"
	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/location"
)

// Config is everything needed to open one book and record what it publishes.
type Config struct {
	Location LocationConfig `json:"location" yaml:"location"`
	Book     BookConfig     `json:"book" yaml:"book"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type LocationConfig struct {
	Category string `json:"category" yaml:"category"` // td or strategy
	Group    string `json:"group" yaml:"group"`
	Name     string `json:"name" yaml:"name"`
	// UID overrides the id derived from category/group/name when non-zero.
	UID uint32 `json:"uid,omitempty" yaml:"uid,omitempty"`
}

// BookConfig seeds the book's scalar fields.
type BookConfig struct {
	TradingDay     string  `json:"trading_day,omitempty" yaml:"trading_day,omitempty"` // YYYYMMDD
	InitialEquity  float64 `json:"initial_equity" yaml:"initial_equity"`
	StaticEquity   float64 `json:"static_equity" yaml:"static_equity"`
	Avail          float64 `json:"avail" yaml:"avail"`
	FrozenCash     float64 `json:"frozen_cash" yaml:"frozen_cash"`
	FrozenMargin   float64 `json:"frozen_margin" yaml:"frozen_margin"`
	IntradayFee    float64 `json:"intraday_fee" yaml:"intraday_fee"`
	AccumulatedFee float64 `json:"accumulated_fee" yaml:"accumulated_fee"`
	RealizedPnl    float64 `json:"realized_pnl" yaml:"realized_pnl"`
	Role           string  `json:"role,omitempty" yaml:"role,omitempty"` // ledger or strategy
}

type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	AssetsFile    string `json:"assets_file,omitempty" yaml:"assets_file,omitempty"`
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv loads envPath, or ./.env when it exists and envPath is empty,
// then lets BOOK_* variables override the file values.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv("BOOK_LOCATION_NAME"); v != "" {
		c.Location.Name = v
	}
	if v := os.Getenv("BOOK_LOCATION_GROUP"); v != "" {
		c.Location.Group = v
	}
	if v := os.Getenv("BOOK_TRADING_DAY"); v != "" {
		c.Book.TradingDay = v
	}
	if v := os.Getenv("BOOK_AVAIL"); v != "" {
		avail, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BOOK_AVAIL: %w", err)
		}
		c.Book.Avail = avail
	}
	if v := os.Getenv("BOOK_JOURNAL_TYPE"); v != "" {
		c.Journal.Type = v
	}
	if v := os.Getenv("BOOK_JOURNAL_DB"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("BOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	cat, err := location.ParseCategory(c.Location.Category)
	if err != nil {
		return fmt.Errorf("location.category: %w", err)
	}
	if cat != location.TD && cat != location.Strategy {
		return fmt.Errorf("location.category must be 'td' or 'strategy'")
	}
	if c.Location.Name == "" {
		return fmt.Errorf("location.name is required")
	}
	if c.Book.TradingDay != "" {
		if _, err := broker.ParseDay(c.Book.TradingDay); err != nil {
			return fmt.Errorf("book.trading_day must be YYYYMMDD: %w", err)
		}
	}
	if _, err := parseRole(c.Book.Role); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.AssetsFile == "" || c.Journal.PositionsFile == "" {
			return fmt.Errorf("journal assets_file and positions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// BookLocation builds the location the book is kept at.
func (c *Config) BookLocation() (location.Location, error) {
	cat, err := location.ParseCategory(c.Location.Category)
	if err != nil {
		return location.Location{}, err
	}
	loc := location.New(cat, c.Location.Group, c.Location.Name)
	if c.Location.UID != 0 {
		loc.UID = c.Location.UID
	}
	return loc, nil
}

// BookOptions maps the book section onto book.Options. Publisher and
// logger are left to the caller.
func (c *Config) BookOptions() (book.Options, error) {
	var opts book.Options
	if c.Book.TradingDay != "" {
		day, err := broker.ParseDay(c.Book.TradingDay)
		if err != nil {
			return opts, fmt.Errorf("book.trading_day: %w", err)
		}
		opts.TradingDay = day
	}
	role, err := parseRole(c.Book.Role)
	if err != nil {
		return opts, err
	}

	opts.InitialEquity = c.Book.InitialEquity
	opts.StaticEquity = c.Book.StaticEquity
	opts.Avail = c.Book.Avail
	opts.FrozenCash = c.Book.FrozenCash
	opts.FrozenMargin = c.Book.FrozenMargin
	opts.IntradayFee = c.Book.IntradayFee
	opts.AccumulatedFee = c.Book.AccumulatedFee
	opts.RealizedPnl = c.Book.RealizedPnl
	opts.Role = role
	return opts, nil
}

func parseRole(s string) (book.Role, error) {
	switch strings.ToLower(s) {
	case "", "ledger":
		return book.RoleLedger, nil
	case "strategy":
		return book.RoleStrategy, nil
	}
	return book.RoleStrategy, fmt.Errorf("book.role must be 'ledger' or 'strategy'")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Location: LocationConfig{
			Category: "td",
			Group:    "sim",
			Name:     "SIM-001",
		},
		Book: BookConfig{
			InitialEquity: 1e7,
			StaticEquity:  1e7,
			Avail:         1e7,
			Role:          "ledger",
		},
		Journal: JournalConfig{
			Type:          "csv",
			AssetsFile:    "./assets.csv",
			PositionsFile: "./positions.csv",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
