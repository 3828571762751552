package models

import "strconv"

// Field names a column of the salary table.
type Field string

const (
	WorkYear          Field = "work_year"
	ExperienceLevel   Field = "experience_level"
	EmploymentType    Field = "employment_type"
	JobTitle          Field = "job_title"
	Salary            Field = "salary"
	SalaryCurrency    Field = "salary_currency"
	SalaryInUSD       Field = "salary_in_usd"
	EmployeeResidence Field = "employee_residence"
	RemoteRatio       Field = "remote_ratio"
	CompanyLocation   Field = "company_location"
	CompanySize       Field = "company_size"
)

// RequiredFields are the columns the loader refuses to run without.
var RequiredFields = []Field{
	JobTitle, ExperienceLevel, EmploymentType, RemoteRatio,
	CompanySize, SalaryInUSD, CompanyLocation,
}

// Enumerated categorical domains, in axis order.
var (
	ExperienceLevels = []string{"EN", "MI", "SE", "EX"}
	CompanySizes     = []string{"S", "M", "L"}
)

// Row is one job salary record. Rows are never modified after load.
type Row struct {
	WorkYear          int     `json:"work_year,omitempty"`
	ExperienceLevel   string  `json:"experience_level"`
	EmploymentType    string  `json:"employment_type"`
	JobTitle          string  `json:"job_title"`
	Salary            float64 `json:"salary,omitempty"`
	SalaryCurrency    string  `json:"salary_currency,omitempty"`
	SalaryInUSD       float64 `json:"salary_in_usd"`
	EmployeeResidence string  `json:"employee_residence,omitempty"`
	RemoteRatio       int     `json:"remote_ratio"`
	CompanyLocation   string  `json:"company_location"`
	CompanySize       string  `json:"company_size"`
}

// Text returns the value of f as a string. Numeric fields are
// formatted in their shortest form.
func (r Row) Text(f Field) string {
	switch f {
	case ExperienceLevel:
		return r.ExperienceLevel
	case EmploymentType:
		return r.EmploymentType
	case JobTitle:
		return r.JobTitle
	case SalaryCurrency:
		return r.SalaryCurrency
	case EmployeeResidence:
		return r.EmployeeResidence
	case CompanyLocation:
		return r.CompanyLocation
	case CompanySize:
		return r.CompanySize
	}
	if v, ok := r.Number(f); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Number returns the value of a numeric field. ok is false for
// categorical fields.
func (r Row) Number(f Field) (v float64, ok bool) {
	switch f {
	case WorkYear:
		return float64(r.WorkYear), true
	case Salary:
		return r.Salary, true
	case SalaryInUSD:
		return r.SalaryInUSD, true
	case RemoteRatio:
		return float64(r.RemoteRatio), true
	}
	return 0, false
}

// AggregateGroup is the summary of all rows sharing one key value.
type AggregateGroup struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Size is the drawable area of a view in pixels, after margins.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
