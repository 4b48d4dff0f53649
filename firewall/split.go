// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package firewall

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// shellOperators end the argv portion of a compiled command.
var shellOperators = map[string]bool{
	"||": true,
	"&&": true,
	";":  true,
	"|":  true,
}

// Split turns one compiled command into an argv suitable for exec
// without a shell. Quoting is undone, so comments come back verbatim.
// Tokens from the first shell operator or redirection onward are
// dropped.
func Split(command string) ([]string, error) {
	tokens, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", command, err)
	}
	for i, token := range tokens {
		if shellOperators[token] || isRedirection(token) {
			return tokens[:i], nil
		}
	}
	return tokens, nil
}

// isRedirection matches "2>/dev/null", ">file", "<file" and similar.
func isRedirection(token string) bool {
	trimmed := strings.TrimLeft(token, "0123456789&")
	return strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "<")
}

// SplitAll splits each command in order. The chain-create command loses
// its "|| true", so an applier that execs these directly must tolerate
// -N failing on a chain that already exists.
func SplitAll(commands []string) ([][]string, error) {
	argvs := make([][]string, 0, len(commands))
	for _, command := range commands {
		argv, err := Split(command)
		if err != nil {
			return nil, err
		}
		argvs = append(argvs, argv)
	}
	return argvs, nil
}
