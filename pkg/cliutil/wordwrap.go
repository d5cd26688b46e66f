package cliutil

import (
	"strings"
)

// Wrap the string `s` to a maximum width `w`.  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// Wrap the string `s` to a maximum width `w` with leading indent `i`.  The first line is not
// indented (this is assumed to be done by caller).  Pass `w` == 0 to do no wrapping
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(i, w int, s string) string {
	indent := "\n" + strings.Repeat(" ", i)
	if w == 0 {
		return strings.ReplaceAll(s, "\n", indent)
	}

	width := w - i
	var ret string

	// Not enough room to the right of the indent; start the text on its own line.
	if width < 24 {
		i = 16
		width = w - i
		indent = "\n" + strings.Repeat(" ", i)
		ret = indent
	}
	if width < 24 {
		return ret + strings.ReplaceAll(s, "\n", indent)
	}

	const slop = 5
	width -= slop

	line, s := wrapN(width, slop, s)
	ret += strings.ReplaceAll(line, "\n", indent)
	for s != "" {
		line, s = wrapN(width, slop, s)
		ret += indent + strings.ReplaceAll(line, "\n", indent)
	}
	return ret
}

// wrapN splits `s` at whitespace into a head of at most `n` bytes and the remainder.  The head
// may run up to `slop` past `n` if that consumes all of `s`.  An explicit newline before the
// split point ends the head early.
func wrapN(n, slop int, s string) (head, rest string) {
	if n+slop > len(s) {
		return s, ""
	}
	sp := strings.LastIndexAny(s[:n], " \t\n")
	if sp <= 0 {
		return s, ""
	}
	if nl := strings.LastIndex(s[:n], "\n"); nl > 0 && nl < sp {
		return s[:nl], s[nl+1:]
	}
	return s[:sp], s[sp+1:]
}
