// Package snapfile reads and writes offline snapshot files: a pair of
// Parquet files (codes.parquet, associations.parquet) that let the CLI
// and server run without a database, the way the original desk tool ran
// off a local file. The data version of a file snapshot is the SHA-256
// of its codes file.
package snapfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/t2a/ccam/internal/model"
)

const (
	CodesFile        = "codes.parquet"
	AssociationsFile = "associations.parquet"
)

// Association kinds as stored on disk. Tier labels are deliberately not
// stored: tiers are recomputed by the graph merge on every load.
const (
	KindOfficial     = "official"
	KindIncompatible = "incompatible"
	KindFrequent     = "frequent"
)

// CodeRow is the on-disk shape of one catalog entry.
type CodeRow struct {
	Code            string  `parquet:"code"`
	Label           string  `parquet:"label"`
	Description     string  `parquet:"description,optional"`
	ICRPublic       float64 `parquet:"icr_public,optional"`
	Retired         bool    `parquet:"retired"`
	ChapterNum      string  `parquet:"chapter_num,optional"`
	ChapterTitle    string  `parquet:"chapter_title,optional"`
	SubchapterNum   string  `parquet:"subchapter_num,optional"`
	SubchapterTitle string  `parquet:"subchapter_title,optional"`
}

// AssociationRow is the on-disk shape of one association record of any kind.
type AssociationRow struct {
	Kind           string `parquet:"kind"`
	Code           string `parquet:"code"`
	AssociatedCode string `parquet:"associated_code"`
	Support        int64  `parquet:"support,optional"`
}

func toCode(r CodeRow) model.Code {
	return model.Code{
		Code:            r.Code,
		Label:           r.Label,
		Description:     r.Description,
		ICR:             r.ICRPublic,
		Retired:         r.Retired,
		Chapter:         r.ChapterNum,
		ChapterTitle:    r.ChapterTitle,
		Subchapter:      r.SubchapterNum,
		SubchapterTitle: r.SubchapterTitle,
	}
}

func fromCode(c *model.Code) CodeRow {
	return CodeRow{
		Code:            c.Code,
		Label:           c.Label,
		Description:     c.Description,
		ICRPublic:       c.ICR,
		Retired:         c.Retired,
		ChapterNum:      c.Chapter,
		ChapterTitle:    c.ChapterTitle,
		SubchapterNum:   c.Subchapter,
		SubchapterTitle: c.SubchapterTitle,
	}
}

// readAll streams every row of a Parquet file into memory. Snapshot
// files hold tens of thousands of rows, so buffered batches suffice.
func readAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	out := make([]T, 0, reader.NumRows())
	buf := make([]T, 256)
	for {
		n, readErr := reader.Read(buf)
		out = append(out, buf[:n]...)
		if readErr == io.EOF {
			return out, nil
		}
		if readErr != nil {
			return nil, fmt.Errorf("read parquet rows: %w", readErr)
		}
	}
}

func writeAll[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

// ReadCodes loads the catalog rows from dir.
func ReadCodes(dir string) ([]model.Code, error) {
	rows, err := readAll[CodeRow](filepath.Join(dir, CodesFile))
	if err != nil {
		return nil, err
	}
	codes := make([]model.Code, len(rows))
	for i, r := range rows {
		codes[i] = toCode(r)
	}
	return codes, nil
}

// ReadAssociations loads all association records from dir, split by kind.
// Rows with an unrecognized kind are dropped and counted.
func ReadAssociations(dir string) (official, incompatible []model.Pair, frequency []model.FrequencyPair, dropped int, err error) {
	rows, err := readAll[AssociationRow](filepath.Join(dir, AssociationsFile))
	if err != nil {
		return nil, nil, nil, 0, err
	}
	for _, r := range rows {
		switch r.Kind {
		case KindOfficial:
			official = append(official, model.Pair{A: r.Code, B: r.AssociatedCode})
		case KindIncompatible:
			incompatible = append(incompatible, model.Pair{A: r.Code, B: r.AssociatedCode})
		case KindFrequent:
			frequency = append(frequency, model.FrequencyPair{A: r.Code, B: r.AssociatedCode, Support: int(r.Support)})
		default:
			dropped++
		}
	}
	return official, incompatible, frequency, dropped, nil
}

// Write exports a full snapshot into dir, creating it if needed.
func Write(dir string, codes []*model.Code, official, incompatible []model.Pair, frequency []model.FrequencyPair) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	codeRows := make([]CodeRow, len(codes))
	for i, c := range codes {
		codeRows[i] = fromCode(c)
	}
	if err := writeAll(filepath.Join(dir, CodesFile), codeRows); err != nil {
		return err
	}

	assocRows := make([]AssociationRow, 0, len(official)+len(incompatible)+len(frequency))
	for _, p := range official {
		assocRows = append(assocRows, AssociationRow{Kind: KindOfficial, Code: p.A, AssociatedCode: p.B})
	}
	for _, p := range incompatible {
		assocRows = append(assocRows, AssociationRow{Kind: KindIncompatible, Code: p.A, AssociatedCode: p.B})
	}
	for _, p := range frequency {
		assocRows = append(assocRows, AssociationRow{Kind: KindFrequent, Code: p.A, AssociatedCode: p.B, Support: int64(p.Support)})
	}
	return writeAll(filepath.Join(dir, AssociationsFile), assocRows)
}
