package hierarchy

import (
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markmywords/core"
)

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	Name string `json:"name" form:"name" validate:"notblank"`
}

func (ng *NewGrade) Validate(v *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return v.Struct(ng)
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	GradeID string `json:"gradeId" form:"gradeId" validate:"required"`
	Name    string `json:"name" form:"name" validate:"notblank"`
}

func (nc *NewClass) Validate(v *validator.Validate) error {
	nc.GradeID = core.CleanString(nc.GradeID)
	nc.Name = core.CleanString(nc.Name)
	return v.Struct(nc)
}

// NewLearner contains information needed to create a new Learner.
type NewLearner struct {
	ClassID string `json:"classId" form:"classId" validate:"required"`
	Name    string `json:"name" form:"name" validate:"notblank"`
}

func (nl *NewLearner) Validate(v *validator.Validate) error {
	nl.ClassID = core.CleanString(nl.ClassID)
	nl.Name = core.CleanString(nl.Name)
	return v.Struct(nl)
}

// NewTask contains information needed to create a new Task; the file comes separately as an Upload.
type NewTask struct {
	LearnerID string `json:"learnerId" form:"learnerId" validate:"required"`
	Title     string `json:"title" form:"title" validate:"notblank"`
}

func (nt *NewTask) Validate(v *validator.Validate) error {
	nt.LearnerID = core.CleanString(nt.LearnerID)
	nt.Title = core.CleanString(nt.Title)
	return v.Struct(nt)
}

// Upload is the task file as received from the user.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client, may be empty
	Body        io.Reader
}
