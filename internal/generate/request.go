package generate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AgeGroup is a class age band with its fixed label.
type AgeGroup string

const (
	AgeNursery AgeGroup = "Nhà trẻ (24 - 36 tháng)"
	AgeJunior  AgeGroup = "Mẫu giáo bé (3 - 4 tuổi)"
	AgeMiddle  AgeGroup = "Mẫu giáo nhỡ (4 - 5 tuổi)"
	AgeSenior  AgeGroup = "Mẫu giáo lớn (5 - 6 tuổi)"
)

// AgeGroups lists the accepted age groups in display order.
var AgeGroups = []AgeGroup{AgeNursery, AgeJunior, AgeMiddle, AgeSenior}

// Subject is a curriculum field.
type Subject string

const (
	SubjectCognitive  Subject = "Phát triển nhận thức"
	SubjectAesthetic  Subject = "Phát triển thẩm mỹ"
	SubjectLanguage   Subject = "Phát triển ngôn ngữ"
	SubjectSocial     Subject = "Phát triển tình cảm & KNXH"
	SubjectLiterature Subject = "Làm quen với văn học (Thơ/Truyện)"
	SubjectMath       Subject = "Làm quen với toán"
	SubjectDiscovery  Subject = "Khám phá khoa học/xã hội"
	SubjectArt        Subject = "Hoạt động tạo hình"
	SubjectMusic      Subject = "Giáo dục âm nhạc"
	SubjectPhysical   Subject = "Giáo dục thể chất"
	SubjectLifeSkills Subject = "Giáo dục kỹ năng sống"
)

var Subjects = []Subject{
	SubjectCognitive, SubjectAesthetic, SubjectLanguage, SubjectSocial,
	SubjectLiterature, SubjectMath, SubjectDiscovery, SubjectArt,
	SubjectMusic, SubjectPhysical, SubjectLifeSkills,
}

// Purpose selects how detailed the generated plan is.
type Purpose string

const (
	PurposeDaily       Purpose = "Dạy thường ngày"
	PurposeObservation Purpose = "Dự giờ – thao giảng"
	PurposeCompetition Purpose = "Thi giáo viên giỏi"
)

var Purposes = []Purpose{PurposeDaily, PurposeObservation, PurposeCompetition}

// LessonRequest is the form a teacher fills in to get a lesson plan.
type LessonRequest struct {
	Author       string `json:"author,omitempty" validate:"max=200,safetext"`
	Unit         string `json:"unit,omitempty" validate:"max=200,safetext"`
	DatePrepared string `json:"date_prepared,omitempty" validate:"max=50"`
	DateTaught   string `json:"date_taught,omitempty" validate:"max=50"`

	AgeGroup   AgeGroup `json:"age_group" validate:"required,agegroup"`
	Subject    Subject  `json:"subject" validate:"required,subject"`
	Theme      string   `json:"theme,omitempty" validate:"max=200,safetext"`
	Topic      string   `json:"topic" validate:"required,max=300,safetext"`
	Duration   string   `json:"duration" validate:"required,max=20"`
	Goals      string   `json:"goals,omitempty" validate:"max=2000,safetext"`
	Purpose    Purpose  `json:"purpose" validate:"required,purpose"`
	Facilities string   `json:"facilities,omitempty" validate:"max=2000,safetext"`

	// Sample is an excerpt of an existing plan whose style should be followed.
	Sample string `json:"sample,omitempty" validate:"max=40000"`
}

// InitiativeRequest describes an experience-initiative report.
type InitiativeRequest struct {
	Topic         string `json:"topic" validate:"required,max=300,safetext"`
	Field         string `json:"field" validate:"required,max=200,safetext"`
	AgeGroup      string `json:"age_group" validate:"required,max=100,safetext"`
	Role          string `json:"role" validate:"max=200,safetext"`
	Unit          string `json:"unit" validate:"max=200,safetext"`
	Advantages    string `json:"advantages" validate:"max=4000,safetext"`
	Disadvantages string `json:"disadvantages" validate:"max=4000,safetext"`
	Measures      string `json:"measures" validate:"required,max=8000,safetext"`
	Results       string `json:"results" validate:"max=4000,safetext"`
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`forget\s+(everything|all)|new\s+instructions|` +
		`bỏ\s+qua\s+(mọi|tất\s+cả)\s+(hướng\s+dẫn|yêu\s+cầu))`,
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	mustRegister(v, "agegroup", func(fl validator.FieldLevel) bool {
		return contains(AgeGroups, AgeGroup(fl.Field().String()))
	})
	mustRegister(v, "subject", func(fl validator.FieldLevel) bool {
		return contains(Subjects, Subject(fl.Field().String()))
	})
	mustRegister(v, "purpose", func(fl validator.FieldLevel) bool {
		return contains(Purposes, Purpose(fl.Field().String()))
	})
	mustRegister(v, "safetext", func(fl validator.FieldLevel) bool {
		return !injectionPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ValidationError lists the fields of a request that failed validation.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, rule := range e.Fields {
		parts = append(parts, f+": "+rule)
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// Validate checks a *LessonRequest or *InitiativeRequest. Free-text fields
// that look like prompt injection are rejected.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = fe.Tag()
	}
	return ve
}
