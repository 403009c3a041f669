package services

import (
	"bufio"
	"os"
	"strings"
)

// BlackList holds forbidden passwords. Entries are stored lower-cased and
// Forbids lower-cases its argument, so "Password" and "PASSWORD" match the
// same line.
type BlackList map[string]bool

// Forbids reports whether password is on the list. A nil list forbids nothing.
func (b BlackList) Forbids(password string) bool {
	return b[strings.ToLower(password)]
}

// LoadBlackList reads one forbidden password per line, trimming surrounding
// whitespace and skipping blank lines.
func LoadBlackList(filePath string) (BlackList, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	list := BlackList{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			list[strings.ToLower(line)] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
