package session

import (
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
)

var (
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrNotLoggedIn          = errors.New("not logged in")
)

// UserSource lists the known accounts in insertion order.
type UserSource interface {
	Users() []document.User
}

// Selection is the hierarchy position the user is working on.
type Selection struct {
	GradeID   string `json:"gradeId"`
	ClassID   string `json:"classId"`
	LearnerID string `json:"learnerId"`
	TaskID    string `json:"taskId"`
}

// Controller holds the single, in-memory login session. It is never persisted.
type Controller struct {
	mu          sync.RWMutex
	users       UserSource
	user        *document.User
	sessionID   string
	selection   Selection
	logoutHooks []func()
}

func NewController(users UserSource) *Controller {
	vala.BeginValidation().Validate(
		core.IsSet(users, "users"),
	).CheckAndPanic()

	return &Controller{users: users}
}

// OnLogout registers fn to run after every logout.
func (c *Controller) OnLogout(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutHooks = append(c.logoutHooks, fn)
}

// Login starts a new session for the first user matching both username and password.
// On failure the current session is left untouched.
func (c *Controller) Login(username, password string) (document.User, string, error) {
	for _, usr := range c.users.Users() {
		if usr.Username == username && usr.Password == password {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.user = &usr
			c.sessionID = document.NewID()
			c.selection = Selection{}
			return usr, c.sessionID, nil
		}
	}
	return document.User{}, "", ErrAuthenticationFailed
}

func (c *Controller) Logout() {
	c.mu.Lock()
	c.user = nil
	c.sessionID = ""
	c.selection = Selection{}
	hooks := append([]func(){}, c.logoutHooks...)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (c *Controller) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

// CurrentUser returns the logged in user, false when logged out.
func (c *Controller) CurrentUser() (document.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return document.User{}, false
	}
	return *c.user, true
}

// SessionID identifies the current login; it is empty when logged out.
func (c *Controller) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Controller) Selection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// Select replaces the whole selection.
func (c *Controller) Select(sel Selection) error {
	return c.update(func(s *Selection) { *s = sel })
}

func (c *Controller) SelectGrade(id string) error {
	return c.update(func(s *Selection) { s.GradeID = id })
}

func (c *Controller) SelectClass(id string) error {
	return c.update(func(s *Selection) { s.ClassID = id })
}

func (c *Controller) SelectLearner(id string) error {
	return c.update(func(s *Selection) { s.LearnerID = id })
}

func (c *Controller) SelectTask(id string) error {
	return c.update(func(s *Selection) { s.TaskID = id })
}

func (c *Controller) update(fn func(s *Selection)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return ErrNotLoggedIn
	}
	fn(&c.selection)
	return nil
}

// SelectedTask reports the task annotations are committed to.
func (c *Controller) SelectedTask() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil || c.selection.TaskID == "" {
		return "", false
	}
	return c.selection.TaskID, true
}
