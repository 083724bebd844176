package document

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
)

var ErrUserNotFound = errors.New("user not found")

// State owns the in-memory document and writes it through to the repository on every mutation.
type State struct {
	mu     sync.RWMutex
	doc    Document
	repo   Repository
	logger core.Logger
}

// Open rehydrates the state from repo.
// When nothing has been persisted yet, seed is saved before the state is returned.
func Open(ctx context.Context, repo Repository, seed Document, logger core.Logger) (st *State, err error) {
	if err = vala.BeginValidation().Validate(
		core.IsSet(repo, "repo"),
		core.IsSet(logger, "logger"),
	).Check(); err != nil {
		return nil, err
	}

	doc, err := repo.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		doc = seed.Clone()
		if err = repo.Save(ctx, doc); err != nil {
			return nil, &PersistenceError{Op: "seed", Err: err}
		}
		logger.Info("seeded new document", map[string]interface{}{"users": len(doc.Users)})
	case err != nil:
		return nil, errors.Wrap(err, "loading document")
	}

	return &State{doc: doc, repo: repo, logger: logger}, nil
}

// mutate applies fn to a copy of the document and swaps it in once the copy is persisted.
// Writers are serialized, so saves complete in mutation order.
func (st *State) mutate(ctx context.Context, op string, fn func(doc *Document) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.doc.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := st.repo.Save(ctx, next); err != nil {
		pErr := &PersistenceError{Op: op, Err: err}
		st.logger.Error(pErr.Error(), err)
		return pErr
	}
	st.doc = next
	return nil
}

func (st *State) AddGrade(ctx context.Context, g Grade) error {
	return st.mutate(ctx, "grade", func(doc *Document) error {
		doc.Grades = append(doc.Grades, g)
		return nil
	})
}

func (st *State) AddClass(ctx context.Context, c Class) error {
	return st.mutate(ctx, "class", func(doc *Document) error {
		doc.Classes = append(doc.Classes, c)
		return nil
	})
}

func (st *State) AddLearner(ctx context.Context, l Learner) error {
	return st.mutate(ctx, "learner", func(doc *Document) error {
		doc.Learners = append(doc.Learners, l)
		return nil
	})
}

func (st *State) AddTask(ctx context.Context, t Task) error {
	return st.mutate(ctx, "task", func(doc *Document) error {
		doc.Tasks = append(doc.Tasks, t)
		return nil
	})
}

func (st *State) AddAnnotation(ctx context.Context, a Annotation) error {
	a.Path = append([]Point(nil), a.Path...)
	return st.mutate(ctx, "annotation", func(doc *Document) error {
		doc.Annotations = append(doc.Annotations, a)
		return nil
	})
}

// SetUserPassword replaces the password of the first user named username.
func (st *State) SetUserPassword(ctx context.Context, username, password string) error {
	return st.mutate(ctx, "user", func(doc *Document) error {
		for i := range doc.Users {
			if doc.Users[i].Username == username {
				doc.Users[i].Password = password
				return nil
			}
		}
		return ErrUserNotFound
	})
}

// Snapshot returns a deep copy of the current document.
func (st *State) Snapshot() Document {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.doc.Clone()
}

func (st *State) Users() []User {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]User{}, st.doc.Users...)
}

func (st *State) Grades() []Grade {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Grade{}, st.doc.Grades...)
}

func (st *State) ClassesForGrade(gradeID string) []Class {
	st.mu.RLock()
	defer st.mu.RUnlock()

	classes := make([]Class, 0)
	for _, c := range st.doc.Classes {
		if c.GradeID == gradeID {
			classes = append(classes, c)
		}
	}
	return classes
}

func (st *State) LearnersForClass(classID string) []Learner {
	st.mu.RLock()
	defer st.mu.RUnlock()

	learners := make([]Learner, 0)
	for _, l := range st.doc.Learners {
		if l.ClassID == classID {
			learners = append(learners, l)
		}
	}
	return learners
}

func (st *State) TasksForLearner(learnerID string) []Task {
	st.mu.RLock()
	defer st.mu.RUnlock()

	tasks := make([]Task, 0)
	for _, t := range st.doc.Tasks {
		if t.LearnerID == learnerID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (st *State) AnnotationsForTask(taskID string) []Annotation {
	st.mu.RLock()
	defer st.mu.RUnlock()

	annotations := make([]Annotation, 0)
	for _, a := range st.doc.Annotations {
		if a.TaskID == taskID {
			a.Path = append([]Point(nil), a.Path...)
			annotations = append(annotations, a)
		}
	}
	return annotations
}

func (st *State) Grade(id string) (Grade, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, g := range st.doc.Grades {
		if g.ID == id {
			return g, true
		}
	}
	return Grade{}, false
}

func (st *State) Class(id string) (Class, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, c := range st.doc.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

func (st *State) Learner(id string) (Learner, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, l := range st.doc.Learners {
		if l.ID == id {
			return l, true
		}
	}
	return Learner{}, false
}

func (st *State) Task(id string) (Task, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, t := range st.doc.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
