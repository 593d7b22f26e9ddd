package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env string // "dev" | "prod"

	// Transport
	HTTPAddr string // empty disables the status server
	GRPCAddr string // empty disables the gRPC health server

	// Storage
	Store       string // sqlite | postgres | memory
	DBPath      string // e.g. "./data/pdks.db"
	DatabaseURL string // postgres only

	// Terminal bridge
	DeviceURL     string
	DeviceTimeout time.Duration

	// Pass behaviour
	DayStartHour        int
	MinInterval         time.Duration
	AutoCreatePersonnel bool
	ClearDeviceData     bool
	SyncInterval        time.Duration

	LogLevel string
}

// FromEnv reads PDKS_* variables. Names used by the previous deployment
// (SYNC_*) are honoured when the PDKS_* form is unset. Unparseable
// values fall back to their defaults; Validate catches the rest.
func FromEnv() Config {
	env := strings.ToLower(getenvDefault("PDKS_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dayStart := getenvInt(firstSet("PDKS_DAY_START_HOUR", "SYNC_DAY_START_HOUR"), 5)
	if dayStart > 23 {
		dayStart = 5
	}

	return Config{
		Env: env,

		HTTPAddr: getenvAllowEmpty("PDKS_HTTP_ADDR", ":8080"),
		GRPCAddr: strings.TrimSpace(os.Getenv("PDKS_GRPC_ADDR")),

		Store:       strings.ToLower(getenvDefault("PDKS_STORE", StoreSQLite)),
		DBPath:      getenvDefault("PDKS_DB_PATH", "./data/pdks.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("PDKS_DATABASE_URL")),

		DeviceURL:     getenvDefault("PDKS_DEVICE_URL", "http://127.0.0.1:4371"),
		DeviceTimeout: seconds(getenvInt("PDKS_DEVICE_TIMEOUT_SECONDS", 10)),

		DayStartHour:        dayStart,
		MinInterval:         seconds(getenvInt(firstSet("PDKS_MIN_INTERVAL_SECONDS", "SYNC_MIN_INTERVAL_SECONDS"), 300)),
		AutoCreatePersonnel: getBoolEnv(firstSet("PDKS_AUTO_CREATE_PERSONNEL", "SYNC_AUTO_CREATE_PERSONEL"), false),
		ClearDeviceData:     getBoolEnv(firstSet("PDKS_CLEAR_DEVICE_DATA", "SYNC_CLEAR_DEVICE_DATA"), false),
		SyncInterval:        seconds(getenvInt("PDKS_SYNC_INTERVAL_SECONDS", 300)),

		LogLevel: strings.ToLower(getenvDefault("PDKS_LOG_LEVEL", "info")),
	}
}

// Validate reports settings the process cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return xerrors.New("PDKS_DATABASE_URL is required when PDKS_STORE=postgres")
		}
	default:
		return xerrors.Errorf("unknown PDKS_STORE %q (want sqlite, postgres or memory)", c.Store)
	}
	if strings.TrimSpace(c.DeviceURL) == "" {
		return xerrors.New("PDKS_DEVICE_URL must not be empty")
	}
	if c.SyncInterval <= 0 {
		return xerrors.New("PDKS_SYNC_INTERVAL_SECONDS must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return xerrors.Errorf("unknown PDKS_LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// firstSet returns the first key that has a non-blank value, or the
// first key when none do.
func firstSet(keys ...string) string {
	for _, k := range keys {
		if strings.TrimSpace(os.Getenv(k)) != "" {
			return k
		}
	}
	return keys[0]
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// getenvAllowEmpty distinguishes unset (default) from set-but-empty.
func getenvAllowEmpty(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
