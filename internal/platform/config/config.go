package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageMemory     = "memory"
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
	StoragePostgres   = "postgres"
	StorageSQLite     = "sqlite"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBolt   = "bolt"
)

// Audit sinks.
const (
	AuditLog   = "log"
	AuditKafka = "kafka"
	AuditNone  = "none"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Logging  Logging
	Storage  Storage
	Cache    Cache
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Audit    Audit
	CORS      CORS
	Tracing   Tracing
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds one extraction including the storage fetch.
	RequestTimeout time.Duration
}

// Logging selects the log handler.
type Logging struct {
	Level  string
	Format string // "json" or "text"
}

// Storage selects and configures the document source.
type Storage struct {
	Backend string
	// MaxDocumentBytes rejects larger documents. Zero disables the cap.
	MaxDocumentBytes int64

	FilesystemRoot string

	S3Region      string
	S3Endpoint    string
	S3PathStyle   bool
	S3MaxAttempts int

	PostgresTable string

	SQLitePath string
}

// Cache configures the optional document cache in front of storage.
type Cache struct {
	Backend      string
	TTL          time.Duration
	MaxEntries   int
	MaxItemBytes int
	BoltPath     string
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the audit producer.
type KafkaConfig struct {
	Brokers         []string
	ClientID        string
	Topic           string
	Linger          time.Duration
	DeliveryTimeout time.Duration
}

// Audit selects where extraction events go.
type Audit struct {
	Sink       string
	BufferSize int
	Encoding   string // "json" or "cbor"
}

// CORS lists the browser origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string
}

// RateLimit bounds extraction requests per client IP. Requests <= 0 disables it.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Backend  string // "memory", "token" or "redis"
}

// Tracing configures span export. An empty endpoint leaves the global no-op
// provider in place.
type Tracing struct {
	ServiceName string
	Endpoint    string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	r := &reader{}
	cfg := Config{
		Server: Server{
			Addr:            r.str("DICOMVIEWER_ADDR", ":8080"),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: r.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  r.duration("REQUEST_TIMEOUT", 20*time.Second),
		},
		Logging: Logging{
			Level:  r.str("LOG_LEVEL", "info"),
			Format: r.str("LOG_FORMAT", "json"),
		},
		Storage: Storage{
			Backend:          r.str("STORAGE_BACKEND", StorageMemory),
			MaxDocumentBytes: int64(r.integer("STORAGE_MAX_DOCUMENT_BYTES", 512<<20)),
			FilesystemRoot:   r.str("STORAGE_FS_ROOT", ""),
			S3Region:         r.str("AWS_REGION", ""),
			S3Endpoint:       r.str("S3_ENDPOINT", ""),
			S3PathStyle:      r.boolean("S3_PATH_STYLE", false),
			S3MaxAttempts:    r.integer("S3_MAX_ATTEMPTS", 3),
			PostgresTable:    r.str("STORAGE_PG_TABLE", "dicom_documents"),
			SQLitePath:       r.str("STORAGE_SQLITE_PATH", ""),
		},
		Cache: Cache{
			Backend:      r.str("CACHE_BACKEND", CacheNone),
			TTL:          r.duration("CACHE_TTL", 5*time.Minute),
			MaxEntries:   r.integer("CACHE_MAX_ENTRIES", 256),
			MaxItemBytes: r.integer("CACHE_MAX_ITEM_BYTES", 8<<20),
			BoltPath:     r.str("CACHE_BOLT_PATH", ""),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             r.str("DATABASE_URL", ""),
			MaxOpenConns:    r.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    r.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:         r.list("KAFKA_BROKERS"),
			ClientID:        r.str("KAFKA_CLIENT_ID", "dicomviewer"),
			Topic:           r.str("KAFKA_AUDIT_TOPIC", "dicom.extractions"),
			Linger:          r.duration("KAFKA_LINGER", 10*time.Millisecond),
			DeliveryTimeout: r.duration("KAFKA_DELIVERY_TIMEOUT", 10*time.Second),
		},
		Audit: Audit{
			Sink:       r.str("AUDIT_SINK", AuditLog),
			BufferSize: r.integer("AUDIT_BUFFER_SIZE", 1024),
			Encoding:   r.str("AUDIT_ENCODING", "json"),
		},
		CORS: CORS{
			AllowedOrigins: r.listOr("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Tracing: Tracing{
			ServiceName: r.str("OTEL_SERVICE_NAME", "dicomviewer"),
			Endpoint:    r.str("OTEL_EXPORTER_JAEGER_ENDPOINT", ""),
		},
		RateLimit: RateLimit{
			Requests: r.integer("RATE_LIMIT_REQUESTS", 120),
			Window:   r.duration("RATE_LIMIT_WINDOW", time.Minute),
			Backend:  r.str("RATE_LIMIT_BACKEND", "memory"),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case StorageMemory, StorageS3:
	case StorageFilesystem:
		if c.Storage.FilesystemRoot == "" {
			errs = append(errs, errors.New("STORAGE_FS_ROOT is required for the filesystem backend"))
		}
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("STORAGE_SQLITE_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache"))
		}
	case CacheBolt:
		if c.Cache.BoltPath == "" {
			errs = append(errs, errors.New("CACHE_BOLT_PATH is required for the bolt cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	switch c.Audit.Sink {
	case AuditNone, AuditLog:
	case AuditKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka audit sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_SINK %q", c.Audit.Sink))
	}
	if c.RateLimit.Requests > 0 {
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
		}
		switch c.RateLimit.Backend {
		case "memory", "token":
		case "redis":
			if c.Redis.URL == "" {
				errs = append(errs, errors.New("REDIS_URL is required for the redis rate limiter"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend))
		}
	}
	if c.Audit.Encoding != "json" && c.Audit.Encoding != "cbor" {
		errs = append(errs, fmt.Errorf("unknown AUDIT_ENCODING %q", c.Audit.Encoding))
	}
	return errors.Join(errs...)
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	errs []error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	return r.listOr(key, nil)
}

func (r *reader) listOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
