// Package main is the entry point for pipeprov, the named pipe provisioner.
//
// pipeprov creates, removes and lists named pipes (FIFOs). The set of pipes
// is data: command-line PATH[:MODE] arguments, a YAML/TOML/JSON manifest, or
// the PIPEPROV_PIPES environment variable.
//
// Configuration:
//   - Environment variables (12-factor), used as flag defaults
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Create two pipes, rw for everyone
//	pipeprov provision /run/app/pipe0:0666 /run/app/pipe1:rw-rw-rw-
//
//	# Create the pipes listed in a manifest, fail if any could not be created
//	pipeprov provision --manifest /etc/pipeprov/pipes.yaml --strict
//
//	# Remove them again
//	pipeprov remove --manifest /etc/pipeprov/pipes.yaml
//
//	# List pipes below a directory as JSON
//	pipeprov -o json scan /run/app --match 'pipe*'
//
// Logs go to stderr; results go to stdout.
package main
