// Copyright (C) 2020  Ambassador Labs (for Telepresence)
// Copyright (C) 2021  Ambassador Labs (for ocibuild)
//
// SPDX-License-Identifier: Apache-2.0
//
// Based on
// https://github.com/telepresenceio/telepresence/blob/b6dfa04ff014915b47386191cc3d8b1352522fea/pkg/client/cli/command_group.go#L35-L63

package cliutil

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// GetTerminalWidth returns the width to wrap help text to, or 0 for "don't wrap".
//
// $COLUMNS wins if it is set.  Otherwise the width is taken from stdout, or from stderr (which
// is where help for a usage error is written) if stdout isn't a terminal.
func GetTerminalWidth() int {
	// Copyright note: This code was originally written by LukeShu for Telepresence.
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		return cols
	}
	for _, fd := range []int{1, 2} {
		if !term.IsTerminal(fd) {
			continue
		}
		if cols, _, err := term.GetSize(fd); err == nil {
			return cols
		}
		return 80
	}
	return 0
}
