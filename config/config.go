/*
Package config loads server settings from flags and the environment.

PRECEDENCE:
  flag > environment variable > built-in default

VARIABLES:
  TRAFFIC_PORT             -port             8080
  TRAFFIC_DB               -db               traffic.db (":memory:" allowed)
  TRAFFIC_LOG_LEVEL        -log-level        info
  TRAFFIC_LOG_FORMAT       -log-format       text (or json)
  TRAFFIC_MAX_UPLOAD_MB    -max-upload-mb    32
  TRAFFIC_ALLOWED_ORIGINS  -origins          comma separated CORS origins
  TRAFFIC_KEEP_UPLOADS     -keep-uploads     10 stored uploads
  TRAFFIC_MERGE_INTERVAL   -interval         5 minutes
  TRAFFIC_LIMIT            -limit            2 visits per day
  TRAFFIC_REFERENCE_MONTH  -reference-month  first_inserted

The last three are only the startup parameters; parameters saved through
the API take precedence once they exist.
*/
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/logging"
)

type Config struct {
	Port           int
	DBPath         string
	LogLevel       slog.Level
	LogFormat      string
	MaxUploadMB    int
	AllowedOrigins []string
	KeepUploads    int
	Params         attendance.Params
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", k, v)
	}
	return n, nil
}

// Load parses args (without the program name) on top of the environment.
func Load(args []string) (*Config, error) {
	port, err := getInt("TRAFFIC_PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getInt("TRAFFIC_MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	keep, err := getInt("TRAFFIC_KEEP_UPLOADS", 10)
	if err != nil {
		return nil, err
	}
	interval, err := getInt("TRAFFIC_MERGE_INTERVAL", attendance.DefaultMergeInterval)
	if err != nil {
		return nil, err
	}
	limit, err := getInt("TRAFFIC_LIMIT", attendance.DefaultTrafficLimit)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	c := &Config{}
	fs.IntVar(&c.Port, "port", port, "HTTP server port")
	fs.StringVar(&c.DBPath, "db", get("TRAFFIC_DB", "traffic.db"), "SQLite database path")
	level := fs.String("log-level", get("TRAFFIC_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", get("TRAFFIC_LOG_FORMAT", "text"), "text or json")
	fs.IntVar(&c.MaxUploadMB, "max-upload-mb", maxUpload, "Largest accepted upload in MiB")
	origins := fs.String("origins", get("TRAFFIC_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"), "Comma separated CORS origins")
	fs.IntVar(&c.KeepUploads, "keep-uploads", keep, "Uploads kept in the database")
	fs.IntVar(&c.Params.MergeIntervalMinutes, "interval", interval, "Merge interval in minutes")
	fs.IntVar(&c.Params.TrafficLimit, "limit", limit, "Visits per day before a day counts as high traffic")
	refMonth := fs.String("reference-month", get("TRAFFIC_REFERENCE_MONTH", string(attendance.FirstInserted)), "first_inserted or earliest_date")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.LogLevel, err = logging.ParseLevel(*level); err != nil {
		return nil, err
	}
	strategy, err := attendance.ParseReferenceMonthStrategy(*refMonth)
	if err != nil {
		return nil, err
	}
	c.Params.ReferenceMonth = strategy
	c.Params = c.Params.Clamp()

	for _, o := range strings.Split(*origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowedOrigins = append(c.AllowedOrigins, o)
		}
	}

	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid max upload size %d MiB", c.MaxUploadMB)
	}
	if c.KeepUploads < 1 {
		c.KeepUploads = 1
	}
	return c, nil
}
