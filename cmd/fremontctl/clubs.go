package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type clubRow struct {
	Name        string
	Description string
}

// readClubs parses a CSV export with a header row naming the Club and
// Description columns. Rows without a club name are skipped.
func readClubs(r io.Reader) ([]clubRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	nameCol, descCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case "Club":
			nameCol = i
		case "Description":
			descCol = i
		}
	}
	if nameCol < 0 || descCol < 0 {
		return nil, errors.New("csv header must contain Club and Description columns")
	}

	var rows []clubRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		row := clubRow{Name: strings.TrimSpace(field(record, nameCol))}
		if row.Name == "" {
			continue
		}
		row.Description = strings.TrimSpace(field(record, descCol))
		rows = append(rows, row)
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
