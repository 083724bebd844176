package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/hierarchy"
)

type hierarchyApi struct {
	srv      *Server
	svc      *hierarchy.Service
	validate *validator.Validate
}

func registerHierarchyAPI(g *echo.Group, authed echo.MiddlewareFunc, srv *Server) {
	api := hierarchyApi{srv: srv, svc: srv.deps.Hierarchy, validate: srv.deps.Validate}

	g.POST("/grades", api.createGrade, authed)
	g.GET("/grades", api.queryGrades, authed)

	g.POST("/classes", api.createClass, authed)
	g.GET("/classes", api.queryClasses, authed)

	g.POST("/learners", api.createLearner, authed)
	g.GET("/learners", api.queryLearners, authed)

	g.POST("/tasks", api.createTask, authed)
	g.GET("/tasks", api.queryTasks, authed)
	g.GET("/tasks/:id", api.retrieveTask, authed)

	g.GET("/annotations", api.queryAnnotations, authed)
}

// requiredQuery returns the query param `name` or a validation error when it is blank.
func requiredQuery(ctx echo.Context, name string) (string, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return "", core.NewValidationError(nil, core.FieldError{Field: name, Error: "this field is required"})
	}
	return val, nil
}

func (api *hierarchyApi) createGrade(ctx echo.Context) error {
	var data hierarchy.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	grade, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, grade)
}

func (api *hierarchyApi) queryGrades(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Grades())
}

func (api *hierarchyApi) createClass(ctx echo.Context) error {
	var data hierarchy.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}

	class, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *hierarchyApi) queryClasses(ctx echo.Context) error {
	gradeID, err := requiredQuery(ctx, "gradeId")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.ClassesForGrade(gradeID))
}

func (api *hierarchyApi) createLearner(ctx echo.Context) error {
	var data hierarchy.NewLearner
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLearner")
	}

	learner, err := api.svc.CreateLearner(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating learner")
	}
	return ctx.JSON(http.StatusCreated, learner)
}

func (api *hierarchyApi) queryLearners(ctx echo.Context) error {
	classID, err := requiredQuery(ctx, "classId")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.LearnersForClass(classID))
}

// createTask expects a multipart form with `learnerId`, `title` and `file`.
// The new task becomes the selected one.
func (api *hierarchyApi) createTask(ctx echo.Context) error {
	data := hierarchy.NewTask{
		LearnerID: ctx.FormValue("learnerId"),
		Title:     ctx.FormValue("title"),
	}

	var upload hierarchy.Upload
	fh, err := ctx.FormFile("file")
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer func(f io.Closer) { _ = f.Close() }(file)
		upload = hierarchy.Upload{Filename: fh.Filename, ContentType: fh.Header.Get(echo.HeaderContentType), Body: file}
	case err == http.ErrMissingFile, err == http.ErrNotMultipart:
		// left to the service to report
	default:
		return errors.Wrap(err, "reading uploaded file")
	}

	task, err := api.svc.CreateTaskForLearner(ctx.Request().Context(), data, upload)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}

	ctrl := api.srv.deps.Session
	sel := ctrl.Selection()
	sel.LearnerID = task.LearnerID
	sel.TaskID = task.ID
	if err = ctrl.Select(sel); err != nil {
		return errSessionEnded
	}
	api.srv.showTask(task.ID)

	return ctx.JSON(http.StatusCreated, task)
}

func (api *hierarchyApi) queryTasks(ctx echo.Context) error {
	learnerID, err := requiredQuery(ctx, "learnerId")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.TasksForLearner(learnerID))
}

func (api *hierarchyApi) retrieveTask(ctx echo.Context) error {
	task, err := api.svc.GetTask(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == hierarchy.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting task")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *hierarchyApi) queryAnnotations(ctx echo.Context) error {
	taskID, err := requiredQuery(ctx, "taskId")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.AnnotationsForTask(taskID))
}
