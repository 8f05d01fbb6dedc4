package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"connector-finder/internal/finder/model"
	"connector-finder/internal/finder/service"
)

type Config struct {
	Host           string
	Port           int
	AllowOrigins   []string
	LogLevel       string
	LogFile        string
	MaxBodyKB      int
	MetricsEnabled bool
	RateLimitRPS   float64 // per client address; 0 disables
	RateLimitBurst int

	StoreDSN string
	Build    service.BuildOptions
	Defaults model.Tolerance
}

// Load reads the environment; a .env in the working directory is applied
// first and never overrides variables already set.
func Load() Config {
	_ = godotenv.Load()

	build := service.DefaultBuildOptions()
	build.SchoeckTables = getlist("SCHOECK_TABLES", build.SchoeckTables)
	build.LeviatTables = getlist("LEVIAT_TABLES", build.LeviatTables)
	build.MappingTable = mappingTable(build.MappingTable)
	build.ConcreteClass = getenv("CONCRETE_CLASS", build.ConcreteClass)

	def := model.DefaultTolerance()
	def.MRdLower = getfloat("DEFAULT_MRD_LOWER", def.MRdLower)
	def.MRdUpper = getfloat("DEFAULT_MRD_UPPER", def.MRdUpper)
	def.VRdLower = getfloat("DEFAULT_VRD_LOWER", def.VRdLower)
	def.VRdUpper = getfloat("DEFAULT_VRD_UPPER", def.VRdUpper)
	off := getint("DEFAULT_HEIGHT_OFFSET", def.HeightAbove)
	def.HeightBelow, def.HeightAbove = off, off
	def.HeightMode = model.ParseHeightMode(getenv("HEIGHT_MODE", "windowed"))

	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           getint("PORT", 8083),
		AllowOrigins:   strings.Split(getenv("ALLOW_ORIGINS", "*"), ","),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        getenv("LOG_FILE", "logs/connector-finder.log"),
		MaxBodyKB:      getint("MAX_BODY_KB", 64),
		MetricsEnabled: getbool("METRICS_ENABLED", true),
		RateLimitRPS:   getfloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getint("RATE_LIMIT_BURST", 20),
		StoreDSN:       getenv("STORE_DSN", "masterfile.db"),
		Build:          build,
		Defaults:       def,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// mappingTable reads MAPPING_TABLE. Set but empty, or "none", means the
// database has no mapping table.
func mappingTable(def string) string {
	v, ok := os.LookupEnv("MAPPING_TABLE")
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

func getint(k string, def int) int {
	if i, err := strconv.Atoi(getenv(k, "")); err == nil {
		return i
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil {
		return f
	}
	return def
}

func getbool(k string, def bool) bool {
	if b, err := strconv.ParseBool(getenv(k, "")); err == nil {
		return b
	}
	return def
}

// getlist splits a comma separated value, dropping blanks.
func getlist(k string, def []string) []string {
	v := getenv(k, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
