package probe

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BoardInfoFile maps board descriptions to canonical board names.
const BoardInfoFile = "board_info.csv"

// lookupBoard normalises a board description through the first
// board_info.csv found in BoardDirs. A description "X with Y" is retried
// as "X". Unmatched boards become GENERIC. Spaces become underscores.
func (p *Prober) lookupBoard(descr string) string {
	board := descr
	for _, dir := range p.BoardDirs {
		path := filepath.Join(dir, BoardInfoFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if canonical, ok := p.findBoard(path, descr); ok {
			board = canonical
			break
		}
		if before, _, found := strings.Cut(descr, "with"); found {
			if canonical, ok := p.findBoard(path, strings.TrimSpace(before)); ok {
				board = canonical
				break
			}
		}
		board = DefaultBoard
	}
	return strings.ReplaceAll(board, " ", "_")
}

func (p *Prober) findBoard(path, descr string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		p.Logger.Warn("cannot read board info", "path", path, "err", err)
		return "", false
	}
	defer f.Close()
	return FindBoard(f, descr)
}

// FindBoard scans "description,canonical_name" lines for descr.
func FindBoard(r io.Reader, descr string) (string, bool) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return "", false
		}
		if len(rec) < 2 {
			continue
		}
		if strings.TrimSpace(rec[0]) == descr {
			return strings.TrimSpace(rec[1]), true
		}
	}
}
