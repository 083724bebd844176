package hierarchy

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
)

const defaultContentType = "application/octet-stream"

var (
	// errors
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent does not exist")
	ErrFileRequired   = errors.New("a task file is required")
	ErrEmptyPath      = errors.New("an annotation needs at least one point")
)

// Service creates and lists grades, classes, learners, tasks and annotations.
type Service struct {
	state    *document.State
	validate *validator.Validate
	strict   bool
}

// NewService returns a service over state.
// With strictReferences, records pointing at a missing parent are rejected.
func NewService(state *document.State, validate *validator.Validate, strictReferences bool) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(state, "state"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{state: state, validate: validate, strict: strictReferences}
}

func (svc *Service) checkParent(field string, exists bool) error {
	if !svc.strict || exists {
		return nil
	}
	return core.NewValidationError(ErrParentNotFound, core.FieldError{Field: field, Error: ErrParentNotFound.Error()})
}

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (document.Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return document.Grade{}, err
	}

	g := document.Grade{ID: document.NewID(), Name: ng.Name}
	if err := svc.state.AddGrade(ctx, g); err != nil {
		return document.Grade{}, err
	}
	return g, nil
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (document.Class, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return document.Class{}, err
	}
	_, ok := svc.state.Grade(nc.GradeID)
	if err := svc.checkParent("gradeId", ok); err != nil {
		return document.Class{}, err
	}

	c := document.Class{ID: document.NewID(), GradeID: nc.GradeID, Name: nc.Name}
	if err := svc.state.AddClass(ctx, c); err != nil {
		return document.Class{}, err
	}
	return c, nil
}

func (svc *Service) CreateLearner(ctx context.Context, nl NewLearner) (document.Learner, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return document.Learner{}, err
	}
	_, ok := svc.state.Class(nl.ClassID)
	if err := svc.checkParent("classId", ok); err != nil {
		return document.Learner{}, err
	}

	l := document.Learner{ID: document.NewID(), ClassID: nl.ClassID, Name: nl.Name}
	if err := svc.state.AddLearner(ctx, l); err != nil {
		return document.Learner{}, err
	}
	return l, nil
}

// CreateTaskForLearner reads the whole upload into a data URL, then appends the task.
// Nothing is appended when the read fails or ctx is cancelled first.
func (svc *Service) CreateTaskForLearner(ctx context.Context, nt NewTask, up Upload) (document.Task, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return document.Task{}, err
	}
	if up.Body == nil {
		return document.Task{}, core.NewValidationError(ErrFileRequired, core.FieldError{Field: "file", Error: ErrFileRequired.Error()})
	}
	_, ok := svc.state.Learner(nt.LearnerID)
	if err := svc.checkParent("learnerId", ok); err != nil {
		return document.Task{}, err
	}

	fileURL, err := readDataURL(ctx, up)
	if err != nil {
		return document.Task{}, err
	}

	t := document.Task{
		ID:         document.NewID(),
		LearnerID:  nt.LearnerID,
		Title:      nt.Title,
		FileURL:    fileURL,
		Status:     document.TaskInProgress,
		TotalMarks: null.Int{},
		CreatedAt:  document.Now(),
	}
	if err = svc.state.AddTask(ctx, t); err != nil {
		return document.Task{}, err
	}
	return t, nil
}

// CommitAnnotation appends one stroke to taskID.
func (svc *Service) CommitAnnotation(ctx context.Context, taskID string, path []document.Point) (document.Annotation, error) {
	if strings.TrimSpace(taskID) == "" {
		return document.Annotation{}, core.NewValidationError(nil, core.FieldError{Field: "taskId", Error: "this field is required"})
	}
	if len(path) == 0 {
		return document.Annotation{}, core.NewValidationError(ErrEmptyPath, core.FieldError{Field: "path", Error: ErrEmptyPath.Error()})
	}
	_, ok := svc.state.Task(taskID)
	if err := svc.checkParent("taskId", ok); err != nil {
		return document.Annotation{}, err
	}

	a := document.Annotation{ID: document.NewID(), TaskID: taskID, Path: append([]document.Point(nil), path...)}
	if err := svc.state.AddAnnotation(ctx, a); err != nil {
		return document.Annotation{}, err
	}
	return a, nil
}

func (svc *Service) Grades() []document.Grade { return svc.state.Grades() }

func (svc *Service) ClassesForGrade(gradeID string) []document.Class {
	return svc.state.ClassesForGrade(gradeID)
}

func (svc *Service) LearnersForClass(classID string) []document.Learner {
	return svc.state.LearnersForClass(classID)
}

func (svc *Service) TasksForLearner(learnerID string) []document.Task {
	return svc.state.TasksForLearner(learnerID)
}

func (svc *Service) GetTask(id string) (document.Task, error) {
	if t, ok := svc.state.Task(id); ok {
		return t, nil
	}
	return document.Task{}, errors.Wrapf(ErrNotFound, "task %q", id)
}

func (svc *Service) AnnotationsForTask(taskID string) []document.Annotation {
	return svc.state.AnnotationsForTask(taskID)
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

func readDataURL(ctx context.Context, up Upload) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, ctxReader{ctx: ctx, r: up.Body}); err != nil {
		return "", errors.Wrapf(err, "reading %q", up.Filename)
	}
	data := buf.Bytes()
	return "data:" + contentType(up.ContentType, data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// contentType prefers the declared media type, then sniffs the content.
func contentType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != defaultContentType {
		return mt
	}
	if len(data) > 0 {
		if mt, _, err := mime.ParseMediaType(http.DetectContentType(data)); err == nil {
			return mt
		}
	}
	return defaultContentType
}
