// Package config loads qbitctl settings from a YAML file and QBIT_*
// environment variables and turns them into client options.
package config
