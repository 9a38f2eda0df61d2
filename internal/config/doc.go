// Package config loads and validates the application configuration.
//
// Values come from built-in defaults, an optional config.yaml in the working
// directory or ./config, an optional .env file, and BOOKSHELF_-prefixed
// environment variables, with later sources taking precedence.
package config
