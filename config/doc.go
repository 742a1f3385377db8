// Package config loads apiq client configuration from YAML files and the
// environment.
//
// Values are layered: the YAML file first, then a .env file, then process
// environment variables prefixed with APIQ_ (APIQ_BASE_URL binds base_url,
// APIQ_TLS_CA_FILE binds tls.ca_file, and so on).
//
//	var cfg client.Config
//	err := config.Load(&cfg, config.WithFile("apiq.yml"))
package config
