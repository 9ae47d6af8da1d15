// Package config loads the promptkit CLI configuration file.
package config
