// Package repl provides interactive mode for redisnode-cli.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: Main REPL loop
//   - completer.go: Prefix completion over a fixed command list
//   - history.go: Command history persistence
//
// Run reads one line at a time, records non-empty lines in the history and
// stops on "exit", "quit" or end of input. Other lines are not executed:
// execute returns nil without running a command. Run does not call the
// completer, and there is no history search, multi-line input or colored
// output.
//
// @design DS-0602
package repl
