package vfs

import (
	"strconv"
	"strings"
)

// ReplaceInFile replaces the single occurrence of oldStr in the file at path
// with newStr. Zero or several occurrences leave the file untouched.
func (fs *FileSystem) ReplaceInFile(path, oldStr, newStr string) error {
	n, err := fs.fileNode("str_replace", path)
	if err != nil {
		return err
	}
	if oldStr == "" {
		return newPathError("str_replace", n.path, ErrNoMatch, "String not found in file: %q", oldStr)
	}

	switch count := strings.Count(n.content, oldStr); count {
	case 0:
		return newPathError("str_replace", n.path, ErrNoMatch, "String not found in file: %q", oldStr)
	case 1:
	default:
		return newPathError("str_replace", n.path, ErrAmbiguousMatch,
			"String appears %d times in %s (lines %s). Provide more context to make the match unique.",
			count, n.path, joinInts(matchLines(n.content, oldStr)))
	}

	fs.history.record(n.path, version{content: n.content, existed: true})
	n.content = strings.Replace(n.content, oldStr, newStr, 1)
	return nil
}

// InsertInFile inserts text as a new line after line number line. Line 0
// prepends and the line count appends.
func (fs *FileSystem) InsertInFile(path string, line int, text string) error {
	n, err := fs.fileNode("insert", path)
	if err != nil {
		return err
	}

	lines := strings.Split(n.content, "\n")
	if line < 0 || line > len(lines) {
		return newPathError("insert", n.path, ErrOutOfRange,
			"Invalid line number: %d. File has %d lines.", line, len(lines))
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:line]...)
	out = append(out, text)
	out = append(out, lines[line:]...)

	fs.history.record(n.path, version{content: n.content, existed: true})
	n.content = strings.Join(out, "\n")
	return nil
}

// matchLines returns the 1-based line of every non-overlapping occurrence
// of sub in s
func matchLines(s, sub string) []int {
	var lines []int
	offset := 0
	for {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			return lines
		}
		abs := offset + idx
		lines = append(lines, strings.Count(s[:abs], "\n")+1)
		offset = abs + len(sub)
	}
}

func joinInts(nums []int) string {
	var b strings.Builder
	for i, n := range nums {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
