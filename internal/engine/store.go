package engine

import "salaryviz/internal/models"

// dictFields are the categorical columns that get a dictionary at load.
var dictFields = []models.Field{
	models.JobTitle,
	models.ExperienceLevel,
	models.EmploymentType,
	models.CompanySize,
	models.CompanyLocation,
}

// Dataset holds the loaded table. It is built once and never mutated;
// every accessor hands out copies or read-only views.
type Dataset struct {
	rows []models.Row

	// Dictionaries (field -> distinct values in first-appearance order)
	dicts map[models.Field][]string
}

// NewDataset takes ownership of rows and builds the per-field
// dictionaries.
func NewDataset(rows []models.Row) *Dataset {
	ds := &Dataset{
		rows:  rows,
		dicts: make(map[models.Field][]string, len(dictFields)),
	}
	for _, f := range dictFields {
		seen := make(map[string]struct{})
		var list []string
		for _, r := range rows {
			v := r.Text(f)
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			list = append(list, v)
		}
		ds.dicts[f] = list
	}
	return ds
}

// Len returns the number of rows.
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.rows)
}

// Rows returns the rows in load order. Callers must not modify the
// returned slice.
func (ds *Dataset) Rows() []models.Row {
	if ds == nil {
		return nil
	}
	return ds.rows[:len(ds.rows):len(ds.rows)]
}

// Distinct returns the distinct values of a categorical field in
// first-appearance order over the whole table, or nil if f has no
// dictionary. Axes use it to keep a stable domain while the working
// set shrinks.
func (ds *Dataset) Distinct(f models.Field) []string {
	if ds == nil {
		return nil
	}
	return append([]string(nil), ds.dicts[f]...)
}
