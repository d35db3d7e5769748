package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadPopulation reads the population-by-borough reference file, a CSV with
// a header row and at least "borough" and "population" columns. Keys are
// normalized the same way as boundary names.
func LoadPopulation(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening population file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading population header: %w", err)
	}

	boroughIdx, popIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "borough", "name":
			boroughIdx = i
		case "population":
			popIdx = i
		}
	}
	if boroughIdx < 0 || popIdx < 0 {
		return nil, fmt.Errorf("population file %s missing borough/population columns", path)
	}

	pop := make(map[string]int)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading population row: %w", err)
		}
		n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(row[popIdx]), ",", ""))
		if err != nil {
			continue
		}
		pop[NormalizeName(row[boroughIdx])] = n
	}
	return pop, nil
}
