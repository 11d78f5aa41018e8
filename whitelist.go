package carcheacks

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadWhitelist reads the authorized plate numbers from the given CSV
// file.  It should contain one plate per line; a leading plate_number
// header line is skipped, blank lines are ignored and plates are
// uppercased.
func LoadWhitelist(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var plates []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))

		if line == "" || line == "PLATE_NUMBER" {
			continue
		}

		plates = append(plates, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return plates, nil
}
