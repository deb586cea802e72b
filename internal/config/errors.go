package config

import "errors"

// ErrInvalidConfig wraps every configuration validation failure. It is a
// fatal, pre-crawl error: nothing is fetched and nothing is written when
// the configuration does not build.
var ErrInvalidConfig = errors.New("invalid configuration")
