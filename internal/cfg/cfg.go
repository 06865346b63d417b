package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http     *HTTPConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Minio    *MinIOCfg
	Cache    *CacheCfg
	Sweeper  *SweeperCfg
	Checkout *CheckoutCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	// PriceTTL — время жизни закэшированной эффективной цены.
	// Часы, а не секунды: кэш должен переживать пики витринного трафика.
	// Ограничение по количеству записей обеспечивает политика allkeys-lru на стороне Redis.
	PriceTTL time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memcache"
)

type CacheCfg struct {
	// Backend — реализация кэша цен: redis (по умолчанию) или memcache —
	// процессный LRU для окружений без Redis.
	Backend string
	// Size — ёмкость процессного LRU. Для redis не используется:
	// там записи ограничивает allkeys-lru.
	Size int
}

type SweeperCfg struct {
	// Interval — период между проходами по статусам скидок.
	Interval time.Duration
	// JitterFactor — разброс интервала, чтобы реплики не запускали проход одновременно.
	JitterFactor float64
}

type CheckoutCfg struct {
	// MaxAttempts — бюджет повторов условной записи остатка при конфликте версий.
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cache, err := loadCacheCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sweeper, err := loadSweeperCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	checkout, err := loadCheckoutCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Minio:    minio,
		Cache:    cache,
		Sweeper:  sweeper,
		Checkout: checkout,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultPriceTTL     = 4 * time.Hour
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetriesStr := getEnvOrDefault("MAX_RETRIES", strconv.Itoa(defaultMaxRetries))
	maxRetries, err := strconv.Atoi(maxRetriesStr)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	priceTTL, err := parseDurationEnv("PRICE_TTL", defaultPriceTTL)
	if err != nil {
		log.Errorf(err, "invalid PRICE_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		PriceTTL:    priceTTL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "stock-updates"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", defaultTopic)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadCacheCfg(log logger.Logger) (*CacheCfg, error) {
	const defaultSize = 10_000

	backend := getEnvOrDefault("PRICE_CACHE_BACKEND", CacheBackendRedis)
	if backend != CacheBackendRedis && backend != CacheBackendMemory {
		err := fmt.Errorf("PRICE_CACHE_BACKEND must be %q or %q, got %q", CacheBackendRedis, CacheBackendMemory, backend)
		log.Errorf(err, "invalid PRICE_CACHE_BACKEND")
		return nil, err
	}

	size, err := parseIntEnv("PRICE_CACHE_SIZE", defaultSize)
	if err != nil {
		log.Errorf(err, "invalid PRICE_CACHE_SIZE")
		return nil, err
	}
	if size < 1 {
		err := fmt.Errorf("PRICE_CACHE_SIZE must be at least 1")
		log.Errorf(err, "invalid PRICE_CACHE_SIZE")
		return nil, err
	}

	return &CacheCfg{
		Backend: backend,
		Size:    size,
	}, nil
}

func loadSweeperCfg(log logger.Logger) (*SweeperCfg, error) {
	const (
		defaultInterval     = time.Hour
		defaultJitterFactor = 0.1
	)

	interval, err := parseDurationEnv("SWEEPER_INTERVAL", defaultInterval)
	if err != nil {
		log.Errorf(err, "invalid SWEEPER_INTERVAL")
		return nil, err
	}

	jitterStr := getEnvOrDefault("SWEEPER_JITTER_FACTOR", strconv.FormatFloat(defaultJitterFactor, 'f', -1, 64))
	jitterFactor, err := strconv.ParseFloat(jitterStr, 64)
	if err != nil {
		log.Errorf(err, "invalid SWEEPER_JITTER_FACTOR")
		return nil, err
	}

	return &SweeperCfg{
		Interval:     interval,
		JitterFactor: jitterFactor,
	}, nil
}

func loadCheckoutCfg(log logger.Logger) (*CheckoutCfg, error) {
	const (
		defaultMaxAttempts = 3
		defaultBackoffBase = 20 * time.Millisecond
		defaultBackoffMax  = 200 * time.Millisecond
	)

	maxAttempts, err := parseIntEnv("CHECKOUT_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, e.Wrap("CHECKOUT_MAX_ATTEMPTS", err)
	}
	if maxAttempts < 1 {
		err := fmt.Errorf("CHECKOUT_MAX_ATTEMPTS must be at least 1")
		log.Errorf(err, "invalid CHECKOUT_MAX_ATTEMPTS")
		return nil, err
	}

	backoffBase, err := parseDurationEnv("CHECKOUT_BACKOFF_BASE", defaultBackoffBase)
	if err != nil {
		log.Errorf(err, "invalid CHECKOUT_BACKOFF_BASE")
		return nil, err
	}

	backoffMax, err := parseDurationEnv("CHECKOUT_BACKOFF_MAX", defaultBackoffMax)
	if err != nil {
		log.Errorf(err, "invalid CHECKOUT_BACKOFF_MAX")
		return nil, err
	}

	return &CheckoutCfg{
		MaxAttempts: maxAttempts,
		BackoffBase: backoffBase,
		BackoffMax:  backoffMax,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
