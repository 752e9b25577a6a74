package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadHolidaysFromFile reads holidays from a file (one date per line).
// Blank lines and lines starting with # are skipped.
func LoadHolidaysFromFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var holidays []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		holidays = append(holidays, line)
	}
	return holidays, scanner.Err()
}
