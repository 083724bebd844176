package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type TaskStatus string

const TaskInProgress TaskStatus = "in-progress"

var (
	NewID   = func() string { return uuid.New().String() } // mockable
	NowFunc = time.Now                                     // mockable
)

// Now returns the current UTC time at the precision timestamps are persisted with.
func Now() time.Time {
	return NowFunc().UTC().Truncate(time.Millisecond)
}

// Document is the single persisted object holding every collection.
// Collections are ordered by insertion.
type Document struct {
	Users       []User       `json:"users"`
	Grades      []Grade      `json:"grades"`
	Classes     []Class      `json:"classes"`
	Learners    []Learner    `json:"learners"`
	Tasks       []Task       `json:"tasks"`
	Annotations []Annotation `json:"annotations"`
}

// User is a dashboard account. Password is stored and compared in plaintext.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Grade struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Class struct {
	ID      string `json:"id"`
	GradeID string `json:"gradeId"`
	Name    string `json:"name"`
}

type Learner struct {
	ID      string `json:"id"`
	ClassID string `json:"classId"`
	Name    string `json:"name"`
}

type Task struct {
	ID         string     `json:"id"`
	LearnerID  string     `json:"learnerId"`
	Title      string     `json:"title"`
	FileURL    string     `json:"fileUrl"` // data URL of the uploaded file
	Status     TaskStatus `json:"status"`
	TotalMarks null.Int   `json:"totalMarks"`
	CreatedAt  time.Time  `json:"createdAt"` // UTC
}

// Point is in surface-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation is one committed freehand stroke on a task.
type Annotation struct {
	ID     string  `json:"id"`
	TaskID string  `json:"taskId"`
	Path   []Point `json:"path"`
}

// New returns an empty document seeded with the given users.
func New(users ...User) Document {
	doc := Document{Users: users}
	doc.normalize()
	return doc
}

// Seed returns the document written on first run: one user and empty collections.
func Seed(username, password string) Document {
	return New(User{ID: NewID(), Username: username, Password: password})
}

// normalize replaces absent collections with empty ones so that they encode as [].
func (doc *Document) normalize() {
	if doc.Users == nil {
		doc.Users = []User{}
	}
	if doc.Grades == nil {
		doc.Grades = []Grade{}
	}
	if doc.Classes == nil {
		doc.Classes = []Class{}
	}
	if doc.Learners == nil {
		doc.Learners = []Learner{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	if doc.Annotations == nil {
		doc.Annotations = []Annotation{}
	}
}

// Clone returns a deep copy of doc.
func (doc Document) Clone() Document {
	c := Document{
		Users:       append([]User(nil), doc.Users...),
		Grades:      append([]Grade(nil), doc.Grades...),
		Classes:     append([]Class(nil), doc.Classes...),
		Learners:    append([]Learner(nil), doc.Learners...),
		Tasks:       append([]Task(nil), doc.Tasks...),
		Annotations: make([]Annotation, len(doc.Annotations)),
	}
	for i, a := range doc.Annotations {
		a.Path = append([]Point(nil), a.Path...)
		c.Annotations[i] = a
	}
	c.normalize()
	return c
}
