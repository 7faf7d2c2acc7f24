package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban/domain"
)

const healthTimeout = 2 * time.Second

// Options carries the optional collaborators of the HTTP shell.
type Options struct {
	Deduper Deduper
	Broker  *Broker
	Health  Pinger
	Logger  *log.Logger
}

// Register wires up all board routes on the provided Echo instance.
func Register(e *echo.Echo, sess *Session, opts Options) {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Broker == nil {
		opts.Broker = NewBroker(opts.Logger)
	}
	if opts.Deduper == nil {
		opts.Deduper = NewMemoryDeduper(24 * time.Hour)
	}
	e.JSONSerializer = SonicSerializer{}

	body := DecodeBodyMiddleware(postCommandMaxSize)
	e.GET("/api/board", getBoard(sess))
	e.GET("/api/drag", getDrag(sess))
	e.POST("/api/tasks", postTask(sess, opts.Broker), body)
	e.POST("/api/commands", postCommands(sess, opts.Deduper, opts.Broker, opts.Logger), body)
	e.GET("/stream", streamBoard(sess, opts.Broker))
	e.GET("/healthz", healthz(opts.Health))
}

func healthz(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			c.Logger().Warnf("health check failed: %v", err)
			return c.String(http.StatusServiceUnavailable, "unhealthy")
		}
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(sess *Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, boardResponse{Columns: sess.Snapshot().Columns})
	}
}

func getDrag(sess *Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, taskID := sess.DragState()
		return c.JSON(http.StatusOK, map[string]string{"state": state.String(), "taskId": taskID})
	}
}

func postTask(sess *Session, broker *Broker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addTaskRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		task, err := sess.AddTask(req.ColumnID, domain.TaskFields{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.String(http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidTask):
			return c.String(http.StatusBadRequest, err.Error())
		case err != nil:
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		broker.PublishBoard(sess.Snapshot())
		return c.JSON(http.StatusCreated, task)
	}
}

func postCommands(sess *Session, deduper Deduper, broker *Broker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newCommandRequestMetrics(c.Request().Context(), logger)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
			metrics.Log(status, err)
		}()

		decodeStart := time.Now()
		cmds := make([]domain.Command, 0, 4)
		if decErr := (SonicSerializer{}).Deserialize(c, &cmds); decErr != nil {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, postCommandResponse{Error: "invalid body"})
		}
		metrics.ObserveDecode(time.Since(decodeStart))
		metrics.SetCommands(len(cmds))
		if len(cmds) == 0 {
			metrics.SetErrorStage("empty")
			return c.JSON(http.StatusBadRequest, postCommandResponse{Error: "no commands"})
		}

		applyStart := time.Now()
		keys := make([]string, len(cmds))
		results := make([]commandResult, len(cmds))
		changed := false
		for i, cmd := range cmds {
			keys[i], results[i] = applyCommand(ctx, sess, deduper, logger, cmd)
			metrics.CountResult(results[i])
			if results[i].Applied && mutates(cmd.Type) {
				changed = true
			}
		}
		metrics.ObserveApply(time.Since(applyStart))

		if changed {
			broker.PublishBoard(sess.Snapshot())
		}
		return c.JSON(http.StatusOK, postCommandResponse{IdempotencyKeys: keys, Results: results})
	}
}

// applyCommand dedupes and applies one command. Client supplied keys are
// recorded before the command runs and released again if it fails. A
// deduper outage does not block gestures: the command is applied anyway.
func applyCommand(ctx context.Context, sess *Session, deduper Deduper, logger *log.Logger, cmd domain.Command) (string, commandResult) {
	key := cmd.IdempotencyKey
	recorded := false
	if key == "" {
		key = uuid.NewString()
	} else {
		added, err := deduper.Add(ctx, sess.ID, key)
		switch {
		case err != nil:
			logger.WithFields(log.Fields{"key": key, "session": sess.ID}).Warnf("dedupe unavailable: %v", err)
		case !added:
			return key, commandResult{Type: cmd.Type, Duplicate: true}
		default:
			recorded = true
		}
	}

	res, err := sess.Apply(ctx, cmd)
	if err != nil {
		res.Error = err.Error()
		if recorded {
			if rerr := deduper.Remove(ctx, sess.ID, key); rerr != nil {
				logger.Errorf("dedupe rollback failed, err: %v, key: %s, session: %s", rerr, key, sess.ID)
			}
		}
	}
	return key, res
}
