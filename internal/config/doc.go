// Package config provides configuration structures and utilities for
// doccrawl. It defines the crawl tuning knobs, their defaults and
// validation, and the optional .doccrawl YAML file with per-site rules
// and scoring overrides.
package config
