package vocab

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a vocabulary file with one "symbol answer" pair per line.
// Blank lines and lines starting with '#' are skipped.
func Load(path string) (*Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only vocabulary file.
			_ = cerr
		}
	}()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("vocabulary file is empty")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromEntries(name, entries), nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Entry{}, fmt.Errorf("expected \"symbol answer\", got %q", line)
	}
	answer := strings.ToLower(fields[1])
	if !isRomaji(answer) {
		return Entry{}, fmt.Errorf("answer %q must be latin letters", fields[1])
	}
	return Entry{
		Symbol: fields[0],
		Answer: answer,
	}, nil
}

func isRomaji(answer string) bool {
	if answer == "" {
		return false
	}
	for i := 0; i < len(answer); i++ {
		ch := answer[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
