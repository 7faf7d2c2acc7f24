package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban/domain"
)

const heartbeatInterval = 30 * time.Second

type sseEvent struct {
	name string
	data []byte
}

// Broker fans board snapshots and moved notices out to SSE subscribers.
// Slow subscribers miss events rather than block publishers.
type Broker struct {
	log *log.Logger

	mu   sync.Mutex
	subs map[chan sseEvent]struct{}
}

// NewBroker creates an empty broker.
func NewBroker(logger *log.Logger) *Broker {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Broker{log: logger, subs: make(map[chan sseEvent]struct{})}
}

func (b *Broker) subscribe() chan sseEvent {
	ch := make(chan sseEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan sseEvent) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *Broker) publish(ev sseEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// PublishBoard sends a board snapshot to all subscribers.
func (b *Broker) PublishBoard(board domain.Board) {
	data, err := sonic.Marshal(boardResponse{Columns: board.Columns})
	if err != nil {
		b.log.Errorf("marshal board: %v", err)
		return
	}
	b.publish(sseEvent{name: domain.NoticeBoard, data: data})
}

// TaskMoved sends a moved notice to all subscribers.
func (b *Broker) TaskMoved(_ context.Context, notice domain.TaskMoved) {
	b.PublishNotice(notice)
}

// PublishNotice sends a moved notice to all subscribers.
func (b *Broker) PublishNotice(notice domain.TaskMoved) {
	payload := struct {
		domain.TaskMoved
		Message string `json:"message"`
	}{TaskMoved: notice, Message: notice.Message()}
	data, err := sonic.Marshal(payload)
	if err != nil {
		b.log.Errorf("marshal notice: %v", err)
		return
	}
	b.publish(sseEvent{name: domain.NoticeTaskMoved, data: data})
}

func streamBoard(sess *Session, broker *Broker) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ch := broker.subscribe()
		defer broker.unsubscribe(ch)

		initial, err := sonic.Marshal(boardResponse{Columns: sess.Snapshot().Columns})
		if err != nil {
			c.Logger().Error(err)
			return err
		}
		c.Response().WriteHeader(http.StatusOK)
		if err := writeEvent(c.Response(), sseEvent{name: domain.NoticeBoard, data: initial}); err != nil {
			return nil
		}
		flusher.Flush()

		ctx := c.Request().Context()
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-ch:
				if err := writeEvent(c.Response(), ev); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := c.Response().Write([]byte(":keepalive\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, ev sseEvent) error {
	buf := make([]byte, 0, len(ev.name)+len(ev.data)+16)
	buf = append(buf, "event: "...)
	buf = append(buf, ev.name...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, ev.data...)
	buf = append(buf, "\n\n"...)
	_, err := w.Write(buf)
	return err
}
