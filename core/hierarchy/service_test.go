package hierarchy_test

import (
	"context"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/core/hierarchy"
	inmemdb "github.com/trezcool/markmywords/storage/database/inmem"
	testutil "github.com/trezcool/markmywords/tests"
)

func newService(t *testing.T, strict bool) (*hierarchy.Service, *document.State, *inmemdb.Store) {
	st, store, _ := testutil.NewState(t)
	return hierarchy.NewService(st, testutil.NewValidator(), strict), st, store
}

func upload(content, contentType string) hierarchy.Upload {
	return hierarchy.Upload{Filename: "task.txt", ContentType: contentType, Body: strings.NewReader(content)}
}

func TestService_CreateGradeAndClass(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t, false)

	grade, err := svc.CreateGrade(ctx, hierarchy.NewGrade{Name: "Grade 7"})
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.Equal(t, "Grade 7", grade.Name)

	class, err := svc.CreateClass(ctx, hierarchy.NewClass{GradeID: grade.ID, Name: "7A"})
	require.NoError(t, err)
	assert.Equal(t, grade.ID, class.GradeID)
	assert.Equal(t, []document.Class{class}, svc.ClassesForGrade(grade.ID))
	assert.Equal(t, []document.Grade{grade}, st.Snapshot().Grades)

	t.Run("non-existent parent is accepted", func(t *testing.T) {
		orphan, err := svc.CreateClass(ctx, hierarchy.NewClass{GradeID: "no-such-grade", Name: "9Z"})
		require.NoError(t, err)
		assert.Equal(t, []document.Class{orphan}, svc.ClassesForGrade("no-such-grade"))

		learner, err := svc.CreateLearner(ctx, hierarchy.NewLearner{ClassID: "no-such-class", Name: "Sipho"})
		require.NoError(t, err)
		assert.Equal(t, "no-such-class", learner.ClassID)
	})
}

func TestService_strictReferences(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService(t, true)

	tests := []struct {
		name  string
		field string
		call  func() error
	}{
		{"class", "gradeId", func() error {
			_, err := svc.CreateClass(ctx, hierarchy.NewClass{GradeID: "nope", Name: "7A"})
			return err
		}},
		{"learner", "classId", func() error {
			_, err := svc.CreateLearner(ctx, hierarchy.NewLearner{ClassID: "nope", Name: "Sipho"})
			return err
		}},
		{"task", "learnerId", func() error {
			_, err := svc.CreateTaskForLearner(ctx, hierarchy.NewTask{LearnerID: "nope", Title: "Essay"}, upload("hi", ""))
			return err
		}},
		{"annotation", "taskId", func() error {
			_, err := svc.CommitAnnotation(ctx, "nope", []document.Point{{X: 1, Y: 1}})
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.True(t, errors.Is(err, hierarchy.ErrParentNotFound))
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tc.field, vErr.Fields[0].Field)
		})
	}
	assert.Empty(t, st.Snapshot().Classes)

	t.Run("existing parents", func(t *testing.T) {
		g, err := svc.CreateGrade(ctx, hierarchy.NewGrade{Name: "Grade 7"})
		require.NoError(t, err)
		c, err := svc.CreateClass(ctx, hierarchy.NewClass{GradeID: g.ID, Name: "7A"})
		require.NoError(t, err)
		l, err := svc.CreateLearner(ctx, hierarchy.NewLearner{ClassID: c.ID, Name: "Sipho"})
		require.NoError(t, err)
		task, err := svc.CreateTaskForLearner(ctx, hierarchy.NewTask{LearnerID: l.ID, Title: "Essay"}, upload("hi", ""))
		require.NoError(t, err)
		_, err = svc.CommitAnnotation(ctx, task.ID, []document.Point{{X: 1, Y: 1}})
		require.NoError(t, err)
	})
}

func TestService_validation(t *testing.T) {
	ctx := context.Background()
	svc, st, store := newService(t, false)
	saves := store.Saves()

	tests := []struct {
		name  string
		field string
		call  func() error
	}{
		{"blank grade name", "name", func() error {
			_, err := svc.CreateGrade(ctx, hierarchy.NewGrade{Name: "   "})
			return err
		}},
		{"missing grade id", "gradeId", func() error {
			_, err := svc.CreateClass(ctx, hierarchy.NewClass{Name: "7A"})
			return err
		}},
		{"blank class name", "name", func() error {
			_, err := svc.CreateClass(ctx, hierarchy.NewClass{GradeID: "g1"})
			return err
		}},
		{"missing class id", "classId", func() error {
			_, err := svc.CreateLearner(ctx, hierarchy.NewLearner{Name: "Sipho"})
			return err
		}},
		{"blank title", "title", func() error {
			_, err := svc.CreateTaskForLearner(ctx, hierarchy.NewTask{LearnerID: "l1", Title: "\t"}, upload("hi", ""))
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "got %v", err)
			require.Len(t, vErrs, 1)
			assert.Equal(t, tc.field, vErrs[0].Field())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.CreateTaskForLearner(ctx, hierarchy.NewTask{LearnerID: "l1", Title: "Essay"}, hierarchy.Upload{})
		assert.True(t, errors.Is(err, hierarchy.ErrFileRequired))
	})

	t.Run("empty annotation", func(t *testing.T) {
		_, err := svc.CommitAnnotation(ctx, "t1", nil)
		assert.True(t, errors.Is(err, hierarchy.ErrEmptyPath))

		_, err = svc.CommitAnnotation(ctx, "", []document.Point{{X: 1, Y: 1}})
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	assert.Equal(t, saves, store.Saves(), "rejected input is never persisted")
	assert.Empty(t, st.Snapshot().Grades)
}

func TestService_CreateTaskForLearner(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 30, 0, 123456789, time.FixedZone("SAST", 2*60*60))
	testutil.FreezeTime(t, now)

	tests := []struct {
		name        string
		content     string
		contentType string
		wantURL     string
	}{
		{"declared type", "%PDF-1.4", "application/pdf", "data:application/pdf;base64,JVBERi0xLjQ="},
		{"declared type with params", "hi", "text/plain; charset=utf-8", "data:text/plain;base64,aGk="},
		{"sniffed type", "%PDF-1.4", "", "data:application/pdf;base64,JVBERi0xLjQ="},
		{"generic declared type is sniffed", "<html><body></body></html>", "application/octet-stream", "data:text/html;base64,PGh0bWw+PGJvZHk+PC9ib2R5PjwvaHRtbD4="},
		{"empty file", "", "", "data:application/octet-stream;base64,"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, st, _ := newService(t, false)

			task, err := svc.CreateTaskForLearner(ctx, hierarchy.NewTask{LearnerID: "l1", Title: " Essay "}, upload(tc.content, tc.contentType))
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, task.FileURL)
			assert.Equal(t, "Essay", task.Title)
			assert.Equal(t, "l1", task.LearnerID)
			assert.Equal(t, document.TaskInProgress, task.Status)
			assert.False(t, task.TotalMarks.Valid)
			assert.Equal(t, time.Date(2024, 3, 1, 6, 30, 0, 123000000, time.UTC), task.CreatedAt)

			got, err := svc.GetTask(task.ID)
			require.NoError(t, err)
			assert.Equal(t, task, got)
			assert.Equal(t, []document.Task{task}, st.TasksForLearner("l1"))
		})
	}
}

func TestService_CreateTaskForLearner_readFailure(t *testing.T) {
	svc, st, _ := newService(t, false)
	nt := hierarchy.NewTask{LearnerID: "l1", Title: "Essay"}

	t.Run("broken reader", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := svc.CreateTaskForLearner(context.Background(), nt, hierarchy.Upload{Body: iotest.ErrReader(boom)})
		assert.True(t, errors.Is(err, boom))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.CreateTaskForLearner(ctx, nt, hierarchy.Upload{Body: strings.NewReader("hi")})
		assert.True(t, errors.Is(err, context.Canceled))
	})

	assert.Empty(t, st.Snapshot().Tasks)
}

func TestService_annotations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, false)

	first := []document.Point{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}}
	second := []document.Point{{X: 1, Y: 2}}

	a1, err := svc.CommitAnnotation(ctx, "t1", first)
	require.NoError(t, err)
	a2, err := svc.CommitAnnotation(ctx, "t1", second)
	require.NoError(t, err)
	_, err = svc.CommitAnnotation(ctx, "t2", second)
	require.NoError(t, err)

	got := svc.AnnotationsForTask("t1")
	assert.Equal(t, []document.Annotation{a1, a2}, got)
	assert.Equal(t, first, got[0].Path)

	first[0].X = 99
	assert.Equal(t, 10.0, svc.AnnotationsForTask("t1")[0].Path[0].X)
}

func TestService_GetTask_notFound(t *testing.T) {
	svc, _, _ := newService(t, false)
	_, err := svc.GetTask("missing")
	assert.True(t, errors.Is(err, hierarchy.ErrNotFound))
}

func TestService_persistenceFailure(t *testing.T) {
	svc, st, store := newService(t, false)
	store.FailSaves(errors.New("quota exceeded"))

	_, err := svc.CreateGrade(context.Background(), hierarchy.NewGrade{Name: "Grade 7"})
	var pErr *document.PersistenceError
	assert.True(t, errors.As(err, &pErr))
	assert.Empty(t, svc.Grades())
	assert.Empty(t, st.Snapshot().Grades)
}
