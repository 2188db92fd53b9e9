// Package config handles loading and parsing of configuration from
// YAML files and environment variables. It defines the application
// configuration structure including server settings, target groups,
// the load balancing algorithm, and the upstream connection timeout,
// and implements the read-only configuration contract the balancer
// queries per request.
package config
