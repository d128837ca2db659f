package config

// AppName is the CLI binary name.
const AppName = "typescan"

// Version is reported by --version.
const Version = "0.1.0"

// DefaultGraphFile is the graph document the CLI loads when --graph is not given.
const DefaultGraphFile = "typegraph.yaml"

// VerboseEnv enables debug logging when set, equivalent to --verbose.
const VerboseEnv = "TYPESCAN_VERBOSE"
