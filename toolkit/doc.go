// Package toolkit provides the built-in tool-execution capabilities consumed
// by the code assistant: sandbox-lite code execution, shell commands behind a
// deny list, file edits confined to the working directory, and an append-only
// journal. Every invocation is bounded by a wall-clock ceiling and fails
// closed: a timeout is reported as a handled error, never an unbounded hang.
package toolkit
