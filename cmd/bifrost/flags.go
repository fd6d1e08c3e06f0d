package main

import (
	"flag"
	"fmt"
	"os"
)

// cliFlags holds command-line overrides for internal/config.Config,
// grounded on cmd/semstreams/flags.go's flag+env-fallback convention.
type cliFlags struct {
	logLevel      string
	port          int
	jsonLogs      bool
	debugRequests bool
	showVersion   bool
}

func parseFlags() *cliFlags {
	f := &cliFlags{}

	flag.StringVar(&f.logLevel, "log-level", getEnv("LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: LOG_LEVEL)")
	flag.IntVar(&f.port, "port", getEnvInt("PORT", 0),
		"HTTP bind port, 0 to use the configured default (env: PORT)")
	flag.BoolVar(&f.jsonLogs, "json-logs", getEnvBool("LOG_FORMAT_JSON", true),
		"Emit JSON logs instead of text")
	flag.BoolVar(&f.debugRequests, "debug-requests", false,
		"Attach a per-request logging middleware to the GraphQL endpoint")
	flag.BoolVar(&f.showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	return f
}

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `bifrost - read-only GraphQL gateway over PsychonautWiki

Usage: %s [options]

Options:
`, os.Args[0])
	flag.PrintDefaults()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	switch v {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}
