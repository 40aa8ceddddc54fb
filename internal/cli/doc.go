// Package cli implements the livemon command-line interface.
//
// Each cobra command parses flags and hands off to a plain function
// (monitorCommand, Init, showConfig, setConfigValue) that takes its writers
// explicitly, so tests can drive commands without a terminal.
//
// # Command Structure
//
//	livemon monitor [cpu|gpu]     - Live report until Ctrl+C
//	livemon config init|show|set  - Manage .livemon.yaml
//	livemon doctor                - Check every section can be filled
//	livemon unlock [path]         - Release a stuck report lock
//	livemon version               - Build information
//	livemon completion <shell>    - Shell completion scripts
//
// # Output Streams
//
// Reports are the only thing monitor writes to stdout (or to --output). Status
// lines, warnings, and logs go to stderr.
//
// # Configuration
//
// Commands resolve config the same way: .env in the working directory, then
// --config or the search path, then LIVEMON_* environment overrides, then
// command flags. The result is validated before anything starts.
package cli
