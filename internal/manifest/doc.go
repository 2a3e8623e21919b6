// Package manifest loads the set of pipes to provision from a file.
//
// YAML, TOML and JSON are accepted; the format follows the file extension.
// Modes are strings in octal ("0660") or symbolic ("rw-rw----") form and
// should be quoted in YAML so they are not read as numbers.
//
//	umask_policy: exact
//	pipes:
//	  - path: /run/app/control
//	    mode: "0600"
//	pools:
//	  - dir: /run/app
//	    prefix: pipe
//	    count: 10
//	    mode: "rw-rw-rw-"
package manifest
