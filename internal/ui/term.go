package ui

import "golang.org/x/term"

// IsTTY reports whether the given file descriptor refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TermWidth returns the terminal width in columns, or 80 if it cannot be
// determined.
func TermWidth(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// ShortenPath collapses the middle of a long path with a dots separator
// so progress lines stay within a column budget. Paths at or under max
// are returned unchanged.
func ShortenPath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	const sep = " ... "
	keep := (max - len(sep)) / 2
	if keep < 1 {
		keep = 1
	}
	return path[:keep] + sep + path[len(path)-keep:]
}
