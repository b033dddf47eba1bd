package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/squad-predictor/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	LogLevel                logging.Level

	AuthBaseURL        string
	AuthIntrospectPath string
	AuthTimeout        time.Duration

	ScoreAPIEnabled           bool
	ScoreAPIBaseURL           string
	ScoreAPIToken             string
	ScoreAPITimeout           time.Duration
	ScoreAPIMaxRetries        int
	ScoreAPICircuitEnabled    bool
	ScoreAPICircuitFailures   int
	ScoreAPICircuitOpen       time.Duration
	ScoreAPICircuitHalfOpen   int
	PredictionHubEnabled      bool
	PredictionHubBaseURL      string
	PredictionHubToken        string
	PredictionHubTimeout      time.Duration
	PredictionHubCircuitOpen  time.Duration
	PredictionHubCircuitFails int

	InternalJobToken     string
	LockoutSweepEnabled  bool
	LockoutSweepInterval time.Duration
	LockoutSweepWorkers  int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	scoreAPIEnabled, err := strconv.ParseBool(getEnv("SCOREAPI_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_ENABLED: %w", err)
	}
	scoreAPITimeout, err := time.ParseDuration(getEnv("SCOREAPI_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_TIMEOUT: %w", err)
	}
	if scoreAPITimeout <= 0 {
		return Config{}, fmt.Errorf("SCOREAPI_TIMEOUT must be > 0")
	}
	scoreAPIMaxRetries, err := getEnvAsInt("SCOREAPI_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_MAX_RETRIES: %w", err)
	}
	if scoreAPIMaxRetries < 0 {
		return Config{}, fmt.Errorf("SCOREAPI_MAX_RETRIES must be >= 0")
	}
	scoreAPICircuitEnabled, err := strconv.ParseBool(getEnv("SCOREAPI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_ENABLED: %w", err)
	}
	scoreAPICircuitFailures, err := getEnvAsInt("SCOREAPI_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if scoreAPICircuitFailures < 1 {
		return Config{}, fmt.Errorf("SCOREAPI_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	scoreAPICircuitOpen, err := time.ParseDuration(getEnv("SCOREAPI_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if scoreAPICircuitOpen <= 0 {
		return Config{}, fmt.Errorf("SCOREAPI_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	scoreAPICircuitHalfOpen, err := getEnvAsInt("SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if scoreAPICircuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	scoreAPIToken := strings.TrimSpace(getEnv("SCOREAPI_TOKEN", ""))
	if scoreAPIEnabled && scoreAPIToken == "" {
		return Config{}, fmt.Errorf("SCOREAPI_TOKEN is required when SCOREAPI_ENABLED=true")
	}

	predictionHubEnabled, err := strconv.ParseBool(getEnv("PREDICTIONHUB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTIONHUB_ENABLED: %w", err)
	}
	predictionHubBaseURL := strings.TrimSpace(getEnv("PREDICTIONHUB_BASE_URL", ""))
	if predictionHubEnabled && predictionHubBaseURL == "" {
		return Config{}, fmt.Errorf("PREDICTIONHUB_BASE_URL is required when PREDICTIONHUB_ENABLED=true")
	}
	predictionHubTimeout, err := time.ParseDuration(getEnv("PREDICTIONHUB_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTIONHUB_TIMEOUT: %w", err)
	}
	if predictionHubTimeout <= 0 {
		return Config{}, fmt.Errorf("PREDICTIONHUB_TIMEOUT must be > 0")
	}
	predictionHubCircuitOpen, err := time.ParseDuration(getEnv("PREDICTIONHUB_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTIONHUB_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if predictionHubCircuitOpen <= 0 {
		return Config{}, fmt.Errorf("PREDICTIONHUB_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	predictionHubCircuitFails, err := getEnvAsInt("PREDICTIONHUB_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTIONHUB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if predictionHubCircuitFails < 1 {
		return Config{}, fmt.Errorf("PREDICTIONHUB_CIRCUIT_FAILURE_COUNT must be >= 1")
	}

	lockoutSweepEnabled, err := strconv.ParseBool(getEnv("LOCKOUT_SWEEP_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOCKOUT_SWEEP_ENABLED: %w", err)
	}
	lockoutSweepInterval, err := time.ParseDuration(getEnv("LOCKOUT_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOCKOUT_SWEEP_INTERVAL: %w", err)
	}
	if lockoutSweepInterval <= 0 {
		return Config{}, fmt.Errorf("LOCKOUT_SWEEP_INTERVAL must be > 0")
	}
	lockoutSweepWorkers, err := getEnvAsInt("LOCKOUT_SWEEP_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOCKOUT_SWEEP_WORKERS: %w", err)
	}
	if lockoutSweepWorkers < 1 {
		return Config{}, fmt.Errorf("LOCKOUT_SWEEP_WORKERS must be >= 1")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	authTimeout, err := time.ParseDuration(getEnv("AUTH_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "squad-predictor-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CacheTTL:                cacheTTL,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		AuthBaseURL:        getEnv("AUTH_BASE_URL", "http://localhost:8081"),
		AuthIntrospectPath: getEnv("AUTH_INTROSPECT_PATH", "/v1/auth/introspect"),
		AuthTimeout:        authTimeout,

		ScoreAPIEnabled:         scoreAPIEnabled,
		ScoreAPIBaseURL:         strings.TrimSpace(getEnv("SCOREAPI_BASE_URL", "https://api.scorehub.io/v1/football")),
		ScoreAPIToken:           scoreAPIToken,
		ScoreAPITimeout:         scoreAPITimeout,
		ScoreAPIMaxRetries:      scoreAPIMaxRetries,
		ScoreAPICircuitEnabled:  scoreAPICircuitEnabled,
		ScoreAPICircuitFailures: scoreAPICircuitFailures,
		ScoreAPICircuitOpen:     scoreAPICircuitOpen,
		ScoreAPICircuitHalfOpen: scoreAPICircuitHalfOpen,

		PredictionHubEnabled:      predictionHubEnabled,
		PredictionHubBaseURL:      predictionHubBaseURL,
		PredictionHubToken:        strings.TrimSpace(getEnv("PREDICTIONHUB_TOKEN", "")),
		PredictionHubTimeout:      predictionHubTimeout,
		PredictionHubCircuitOpen:  predictionHubCircuitOpen,
		PredictionHubCircuitFails: predictionHubCircuitFails,

		InternalJobToken:     strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LockoutSweepEnabled:  lockoutSweepEnabled,
		LockoutSweepInterval: lockoutSweepInterval,
		LockoutSweepWorkers:  lockoutSweepWorkers,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
