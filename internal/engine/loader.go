package engine

import (
	"bufio"
	encsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"

	"salaryviz/internal/models"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// chunkRows is the number of rows per arrow record batch.
const chunkRows = 4096

// Load reads the salary table at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a salary table with a header row. Every column is read
// as text and the numeric columns are coerced afterwards; well-formed
// numbers are a precondition and a bad value fails the whole load.
func Read(r io.Reader) (*Dataset, error) {
	start := time.Now()

	br := bufio.NewReader(r)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	cols := make(map[models.Field]int, len(header))
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		cols[models.Field(name)] = i
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	for _, f := range models.RequiredFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f)
		}
	}

	cr := csv.NewReader(br, arrow.NewSchema(fields, nil),
		csv.WithHeader(false),
		csv.WithChunk(chunkRows),
	)
	defer cr.Release()

	var rows []models.Row
	for cr.Next() {
		rec := cr.Record()
		batch, err := decodeRecord(rec, cols, len(rows))
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}
	if err := cr.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	slog.Info("dataset loaded", "rows", len(rows), "took", time.Since(start))
	return NewDataset(rows), nil
}

func readHeader(br *bufio.Reader) ([]string, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err := encsv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return header, nil
}

// decodeRecord converts one record batch into rows. base is the number
// of rows already decoded, used for error positions.
func decodeRecord(rec arrow.Record, cols map[models.Field]int, base int) ([]models.Row, error) {
	text := func(f models.Field) *array.String {
		i, ok := cols[f]
		if !ok {
			return nil
		}
		return rec.Column(i).(*array.String)
	}
	var (
		workYear  = text(models.WorkYear)
		expLevel  = text(models.ExperienceLevel)
		empType   = text(models.EmploymentType)
		title     = text(models.JobTitle)
		salary    = text(models.Salary)
		currency  = text(models.SalaryCurrency)
		usd       = text(models.SalaryInUSD)
		residence = text(models.EmployeeResidence)
		remote    = text(models.RemoteRatio)
		location  = text(models.CompanyLocation)
		size      = text(models.CompanySize)
	)

	n := int(rec.NumRows())
	out := make([]models.Row, n)
	for i := 0; i < n; i++ {
		line := base + i + 2 // 1-based, after the header
		r := &out[i]
		r.ExperienceLevel = value(expLevel, i)
		r.EmploymentType = value(empType, i)
		r.JobTitle = value(title, i)
		r.SalaryCurrency = value(currency, i)
		r.EmployeeResidence = value(residence, i)
		r.CompanyLocation = value(location, i)
		r.CompanySize = value(size, i)

		var err error
		if r.SalaryInUSD, err = number(usd, i, models.SalaryInUSD, line); err != nil {
			return nil, err
		}
		ratio, err := number(remote, i, models.RemoteRatio, line)
		if err != nil {
			return nil, err
		}
		r.RemoteRatio = int(ratio)
		if salary != nil {
			if r.Salary, err = number(salary, i, models.Salary, line); err != nil {
				return nil, err
			}
		}
		if workYear != nil {
			year, err := number(workYear, i, models.WorkYear, line)
			if err != nil {
				return nil, err
			}
			r.WorkYear = int(year)
		}
	}
	return out, nil
}

// value copies the string out of the arrow buffer so rows do not pin
// record memory.
func value(col *array.String, i int) string {
	if col == nil || col.IsNull(i) {
		return ""
	}
	return strings.Clone(strings.TrimSpace(col.Value(i)))
}

func number(col *array.String, i int, f models.Field, line int) (float64, error) {
	s := value(col, i)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s %q: %w", line, f, s, err)
	}
	return v, nil
}
