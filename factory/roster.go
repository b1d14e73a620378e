/*
Package factory provides document to roster conversion.

PURPOSE:
  Turns a YAML (or JSON) roster document into degrees, departments, teachers,
  courses, semesters, course classes and rate settings, and loads them into a
  store. Records reference each other by code instead of by id, so documents
  can be written by hand and kept in version control.

DOCUMENT SCHEMA:
  id: faculty
  name: Faculty
  description: Two departments over two academic years
  settings:
    baseRate: "50000"
    mode: multiply
    precision: 0
    classCoefficients: {normal: "1.0", special: "1.5", international: "2.0"}
  degrees:
    - {name: Master, shortName: MSc, coefficient: "1.3"}
  departments:
    - {code: CS, name: Computer Science}
  teachers:
    - {code: GV001, name: Alice, dob: 1985-03-02, department: CS, degree: MSc}
  courses:
    - {code: CS101, name: Programming, credits: 3, coefficient: "1.0", totalLessons: 45}
  semesters:
    - {key: F23, name: Fall 2023, year: 2023-2024, startDate: 2023-09-04, endDate: 2024-01-15}
  courseClasses:
    - {code: CS101-01, course: CS101, semester: F23, teacher: GV001, type: special, coefficient: "1.2", studentCount: 35}

  Decimals are quoted strings so they are never read as floats. Dates are
  YYYY-MM-DD. JSON documents use the same field names.

USAGE:
  doc, err := factory.Parse(data)
  summary, err := factory.Load(ctx, store, doc)

SEE ALSO:
  - scenarios.go: embedded demo documents
  - roster/types.go: record types
*/
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// Document is a whole roster.
type Document struct {
	ID            string           `yaml:"id" json:"id,omitempty"`
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description" json:"description"`
	Settings      *SettingsDoc     `yaml:"settings" json:"settings,omitempty"`
	Degrees       []DegreeDoc      `yaml:"degrees" json:"degrees"`
	Departments   []DepartmentDoc  `yaml:"departments" json:"departments"`
	Teachers      []TeacherDoc     `yaml:"teachers" json:"teachers"`
	Courses       []CourseDoc      `yaml:"courses" json:"courses"`
	Semesters     []SemesterDoc    `yaml:"semesters" json:"semesters"`
	CourseClasses []CourseClassDoc `yaml:"courseClasses" json:"courseClasses"`
}

type SettingsDoc struct {
	BaseRate          string            `yaml:"baseRate" json:"baseRate"`
	Mode              string            `yaml:"mode" json:"mode,omitempty"`
	Precision         int32             `yaml:"precision" json:"precision,omitempty"`
	ClassCoefficients map[string]string `yaml:"classCoefficients" json:"classCoefficients"`
}

type DegreeDoc struct {
	Name        string `yaml:"name" json:"name"`
	ShortName   string `yaml:"shortName" json:"shortName"`
	Coefficient string `yaml:"coefficient" json:"coefficient"`
}

type DepartmentDoc struct {
	Code        string `yaml:"code" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// TeacherDoc references its department by code and its degree by short name.
type TeacherDoc struct {
	Code       string `yaml:"code" json:"code"`
	Name       string `yaml:"name" json:"name"`
	DOB        string `yaml:"dob" json:"dob"`
	Phone      string `yaml:"phone" json:"phone,omitempty"`
	Email      string `yaml:"email" json:"email,omitempty"`
	Department string `yaml:"department" json:"department"`
	Degree     string `yaml:"degree" json:"degree"`
}

type CourseDoc struct {
	Code         string `yaml:"code" json:"code"`
	Name         string `yaml:"name" json:"name"`
	Credits      int    `yaml:"credits" json:"credits"`
	Coefficient  string `yaml:"coefficient" json:"coefficient"`
	TotalLessons int    `yaml:"totalLessons" json:"totalLessons"`
	Description  string `yaml:"description" json:"description,omitempty"`
}

// SemesterDoc has a document-local key since semester names need not be unique.
type SemesterDoc struct {
	Key       string `yaml:"key" json:"key"`
	Name      string `yaml:"name" json:"name"`
	Year      string `yaml:"year" json:"year"`
	StartDate string `yaml:"startDate" json:"startDate"`
	EndDate   string `yaml:"endDate" json:"endDate"`
}

type CourseClassDoc struct {
	Code         string `yaml:"code" json:"code"`
	Name         string `yaml:"name" json:"name,omitempty"`
	Course       string `yaml:"course" json:"course"`
	Semester     string `yaml:"semester" json:"semester"`
	Teacher      string `yaml:"teacher" json:"teacher"`
	Type         string `yaml:"type" json:"type,omitempty"`
	Coefficient  string `yaml:"coefficient" json:"coefficient,omitempty"`
	StudentCount int    `yaml:"studentCount" json:"studentCount"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes a YAML or JSON roster document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roster document: %w", err)
	}
	return &doc, nil
}

// RateConfig converts the settings block, filling gaps from the defaults.
func (s SettingsDoc) RateConfig() (payment.RateConfig, error) {
	rates := payment.DefaultRateConfig()
	if s.BaseRate != "" {
		v, err := parseDecimal("settings.baseRate", s.BaseRate)
		if err != nil {
			return payment.RateConfig{}, err
		}
		rates.BaseRate = v
	}
	if s.Mode != "" {
		rates.Mode = payment.CoefficientMode(s.Mode)
	}
	rates.Precision = s.Precision
	for ct, raw := range s.ClassCoefficients {
		v, err := parseDecimal("settings.classCoefficients."+ct, raw)
		if err != nil {
			return payment.RateConfig{}, err
		}
		rates.ClassTypeCoefficients[payment.ClassType(ct)] = v
	}
	return rates, rates.Validate()
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return v, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return t, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Writer is the part of the store a document is loaded into.
type Writer interface {
	CreateDegree(ctx context.Context, d roster.Degree) (roster.Degree, error)
	CreateDepartment(ctx context.Context, d roster.Department) (roster.Department, error)
	CreateTeacher(ctx context.Context, t roster.Teacher) (roster.Teacher, error)
	CreateCourse(ctx context.Context, c roster.Course) (roster.Course, error)
	CreateSemester(ctx context.Context, s roster.Semester) (roster.Semester, error)
	CreateCourseClass(ctx context.Context, cc roster.CourseClass) (roster.CourseClass, error)
	SaveRateConfig(ctx context.Context, rates payment.RateConfig) error
}

// Summary counts what a Load created.
type Summary struct {
	Degrees       int  `json:"degrees"`
	Departments   int  `json:"departments"`
	Teachers      int  `json:"teachers"`
	Courses       int  `json:"courses"`
	Semesters     int  `json:"semesters"`
	CourseClasses int  `json:"courseClasses"`
	Settings      bool `json:"settings"`
}

// Load writes the document in dependency order, resolving code references
// to the ids the store assigns. It stops at the first error; records created
// before it are not rolled back.
func Load(ctx context.Context, w Writer, doc *Document) (Summary, error) {
	var sum Summary

	if doc.Settings != nil {
		rates, err := doc.Settings.RateConfig()
		if err != nil {
			return sum, err
		}
		if err := w.SaveRateConfig(ctx, rates); err != nil {
			return sum, fmt.Errorf("settings: %w", err)
		}
		sum.Settings = true
	}

	degrees := make(map[string]string, len(doc.Degrees))
	for _, d := range doc.Degrees {
		coef, err := parseDecimal("degree coefficient", d.Coefficient)
		if err != nil {
			return sum, err
		}
		created, err := w.CreateDegree(ctx, roster.Degree{Name: d.Name, ShortName: d.ShortName, Coefficient: coef})
		if err != nil {
			return sum, fmt.Errorf("degree %s: %w", d.ShortName, err)
		}
		degrees[d.ShortName] = created.ID
		sum.Degrees++
	}

	departments := make(map[string]string, len(doc.Departments))
	for _, d := range doc.Departments {
		created, err := w.CreateDepartment(ctx, roster.Department{Code: d.Code, Name: d.Name, Description: d.Description})
		if err != nil {
			return sum, fmt.Errorf("department %s: %w", d.Code, err)
		}
		departments[d.Code] = created.ID
		sum.Departments++
	}

	teachers := make(map[string]string, len(doc.Teachers))
	for _, t := range doc.Teachers {
		deptID, ok := departments[t.Department]
		if !ok {
			return sum, fmt.Errorf("teacher %s: unknown department %q", t.Code, t.Department)
		}
		degreeID, ok := degrees[t.Degree]
		if !ok {
			return sum, fmt.Errorf("teacher %s: unknown degree %q", t.Code, t.Degree)
		}
		dob, err := parseDate("teacher dob", t.DOB)
		if err != nil {
			return sum, err
		}
		created, err := w.CreateTeacher(ctx, roster.Teacher{
			Code: t.Code, Name: t.Name, DateOfBirth: dob, Phone: t.Phone, Email: t.Email,
			DepartmentID: deptID, DegreeID: degreeID,
		})
		if err != nil {
			return sum, fmt.Errorf("teacher %s: %w", t.Code, err)
		}
		teachers[t.Code] = created.ID
		sum.Teachers++
	}

	courses := make(map[string]string, len(doc.Courses))
	for _, c := range doc.Courses {
		coef, err := parseDecimal("course coefficient", c.Coefficient)
		if err != nil {
			return sum, err
		}
		created, err := w.CreateCourse(ctx, roster.Course{
			Code: c.Code, Name: c.Name, Credits: c.Credits, Coefficient: coef,
			TotalLessons: c.TotalLessons, Description: c.Description,
		})
		if err != nil {
			return sum, fmt.Errorf("course %s: %w", c.Code, err)
		}
		courses[c.Code] = created.ID
		sum.Courses++
	}

	semesters := make(map[string]string, len(doc.Semesters))
	for _, s := range doc.Semesters {
		start, err := parseDate("semester startDate", s.StartDate)
		if err != nil {
			return sum, err
		}
		end, err := parseDate("semester endDate", s.EndDate)
		if err != nil {
			return sum, err
		}
		created, err := w.CreateSemester(ctx, roster.Semester{Name: s.Name, Year: s.Year, StartDate: start, EndDate: end})
		if err != nil {
			return sum, fmt.Errorf("semester %s: %w", s.Key, err)
		}
		semesters[s.Key] = created.ID
		sum.Semesters++
	}

	for _, cc := range doc.CourseClasses {
		record, err := courseClass(cc, courses, semesters, teachers)
		if err != nil {
			return sum, err
		}
		if _, err := w.CreateCourseClass(ctx, record); err != nil {
			return sum, fmt.Errorf("course class %s: %w", cc.Code, err)
		}
		sum.CourseClasses++
	}

	return sum, nil
}

func courseClass(cc CourseClassDoc, courses, semesters, teachers map[string]string) (roster.CourseClass, error) {
	record := roster.CourseClass{
		Code:         cc.Code,
		Name:         cc.Name,
		Type:         payment.ClassType(cc.Type),
		Coefficient:  decimal.NewFromInt(1),
		StudentCount: cc.StudentCount,
	}
	var ok bool
	if record.CourseID, ok = courses[cc.Course]; !ok {
		return record, fmt.Errorf("course class %s: unknown course %q", cc.Code, cc.Course)
	}
	if record.SemesterID, ok = semesters[cc.Semester]; !ok {
		return record, fmt.Errorf("course class %s: unknown semester %q", cc.Code, cc.Semester)
	}
	if record.TeacherID, ok = teachers[cc.Teacher]; !ok {
		return record, fmt.Errorf("course class %s: unknown teacher %q", cc.Code, cc.Teacher)
	}
	if record.Type == "" {
		record.Type = payment.ClassNormal
	}
	if record.Name == "" {
		record.Name = cc.Course + " " + cc.Code
	}
	if cc.Coefficient != "" {
		coef, err := parseDecimal("course class coefficient", cc.Coefficient)
		if err != nil {
			return record, err
		}
		record.Coefficient = coef
	}
	return record, nil
}
