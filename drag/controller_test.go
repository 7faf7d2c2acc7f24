package drag

import (
	"context"
	"reflect"
	"testing"

	"kanban/board"
	"kanban/domain"
)

type recorder struct {
	notices []domain.TaskMoved
}

func (r *recorder) TaskMoved(_ context.Context, n domain.TaskMoved) {
	r.notices = append(r.notices, n)
}

func setup(t *testing.T, cols ...domain.Column) (*board.Store, *Controller, *recorder) {
	t.Helper()
	s, err := board.New(domain.Board{Columns: cols})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	rec := &recorder{}
	return s, NewController(s, rec, nil), rec
}

func task(id string) domain.Task { return domain.Task{ID: id, Title: "title " + id} }

func columnIDs(t *testing.T, s *board.Store, colID string) []string {
	t.Helper()
	col, ok := s.Column(colID)
	if !ok {
		t.Fatalf("column %q missing", colID)
	}
	out := []string{}
	for _, tk := range col.Tasks {
		out = append(out, tk.ID)
	}
	return out
}

func TestDragAcrossColumnsEmitsSingleNotice(t *testing.T) {
	s, c, rec := setup(t,
		domain.Column{ID: "todo", Title: "To Do", Tasks: []domain.Task{task("t1")}},
		domain.Column{ID: "inprogress", Title: "In Progress"},
	)
	ctx := context.Background()

	if !c.OnDragStart("t1") {
		t.Fatal("expected drag start to be accepted")
	}
	if c.State() != Dragging {
		t.Fatalf("expected dragging, got %s", c.State())
	}
	if !c.OnDragOver("t1", "inprogress") {
		t.Fatal("expected live relocation")
	}
	notice, ok := c.OnDragEnd(ctx, "t1", "inprogress")
	if !ok {
		t.Fatal("expected a moved notice")
	}

	if got := columnIDs(t, s, "todo"); len(got) != 0 {
		t.Fatalf("expected todo to be empty, got %v", got)
	}
	if got := columnIDs(t, s, "inprogress"); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("expected inprogress=[t1], got %v", got)
	}
	if len(rec.notices) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(rec.notices))
	}
	if rec.notices[0].ToColumnID != "inprogress" || rec.notices[0].FromColumnID != "todo" {
		t.Fatalf("unexpected notice %+v", rec.notices[0])
	}
	if notice.Message() != "Task moved to In Progress" {
		t.Fatalf("unexpected message %q", notice.Message())
	}
	if c.State() != Idle {
		t.Fatalf("expected idle after end, got %s", c.State())
	}
	if _, active := c.Active(); active {
		t.Fatal("expected no active task after end")
	}
}

func TestDragStartUnknownTaskStaysIdle(t *testing.T) {
	_, c, _ := setup(t, domain.Column{ID: "todo", Tasks: []domain.Task{task("t1")}})

	if c.OnDragStart("missing") {
		t.Fatal("expected unknown task to be rejected")
	}
	if c.State() != Idle {
		t.Fatalf("expected idle, got %s", c.State())
	}
}

func TestDragOverTaskTargetRelocatesToItsColumn(t *testing.T) {
	s, c, _ := setup(t,
		domain.Column{ID: "a", Tasks: []domain.Task{task("t1"), task("t2")}},
		domain.Column{ID: "b", Tasks: []domain.Task{task("t3")}},
	)

	c.OnDragStart("t1")
	if !c.OnDragOver("t1", "t3") {
		t.Fatal("expected hovering a task in another column to relocate")
	}
	if got := columnIDs(t, s, "b"); !reflect.DeepEqual(got, []string{"t3", "t1"}) {
		t.Fatalf("expected t1 appended to b, got %v", got)
	}
	if c.OnDragOver("t1", "t3") {
		t.Fatal("hovering the current column again must not move")
	}
	if c.OnDragOver("t1", "t1") {
		t.Fatal("hovering itself must not move")
	}
}

func TestDragOverIgnoredWhenIdleOrMismatched(t *testing.T) {
	s, c, _ := setup(t,
		domain.Column{ID: "a", Tasks: []domain.Task{task("t1"), task("t2")}},
		domain.Column{ID: "b"},
	)

	if c.OnDragOver("t1", "b") {
		t.Fatal("expected hover while idle to be ignored")
	}
	c.OnDragStart("t1")
	if c.OnDragOver("t2", "b") {
		t.Fatal("expected hover for a different task to be ignored")
	}
	if c.OnDragOver("t1", "") {
		t.Fatal("expected empty hover target to be ignored")
	}
	if c.OnDragOver("t1", "nowhere") {
		t.Fatal("expected unknown hover target to be ignored")
	}
	if got := columnIDs(t, s, "a"); !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Fatalf("board changed: %v", got)
	}
}

func TestDragEndWithoutTargetKeepsLiveRelocation(t *testing.T) {
	s, c, rec := setup(t,
		domain.Column{ID: "a", Tasks: []domain.Task{task("t1")}},
		domain.Column{ID: "b"},
	)
	ctx := context.Background()

	c.OnDragStart("t1")
	c.OnDragOver("t1", "b")
	if _, ok := c.OnDragEnd(ctx, "t1", ""); ok {
		t.Fatal("expected no notice for an unresolved drop")
	}
	if got := columnIDs(t, s, "b"); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("expected task to stay in b, got %v", got)
	}
	if len(rec.notices) != 0 {
		t.Fatalf("unexpected notices %+v", rec.notices)
	}
	if c.State() != Idle {
		t.Fatalf("expected idle, got %s", c.State())
	}
}

func TestDragEndDoesNotCorrectToDropColumn(t *testing.T) {
	s, c, rec := setup(t,
		domain.Column{ID: "a", Title: "A", Tasks: []domain.Task{task("t1")}},
		domain.Column{ID: "b", Title: "B"},
		domain.Column{ID: "c", Title: "C"},
	)

	c.OnDragStart("t1")
	c.OnDragOver("t1", "b")
	if _, ok := c.OnDragEnd(context.Background(), "t1", "c"); !ok {
		t.Fatal("expected a notice since the task left its origin")
	}
	if got := columnIDs(t, s, "b"); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("expected task to remain at last live relocation, got %v", got)
	}
	if got := columnIDs(t, s, "c"); len(got) != 0 {
		t.Fatalf("expected no corrective move into c, got %v", got)
	}
	if rec.notices[0].ToColumnID != "b" {
		t.Fatalf("notice should cite the actual final column, got %+v", rec.notices[0])
	}
}

func TestDropOnOriginAfterRelocationCitesFinalColumn(t *testing.T) {
	s, c, rec := setup(t,
		domain.Column{ID: "todo", Title: "To Do", Tasks: []domain.Task{task("t1")}},
		domain.Column{ID: "inprogress", Title: "In Progress"},
	)

	c.OnDragStart("t1")
	c.OnDragOver("t1", "inprogress")
	notice, ok := c.OnDragEnd(context.Background(), "t1", "todo")
	if !ok {
		t.Fatal("expected a notice since the task left its origin")
	}
	if notice.FromColumnID != "todo" || notice.ToColumnID != "inprogress" {
		t.Fatalf("drop target must not select the notice column, got %+v", notice)
	}
	if got := columnIDs(t, s, "todo"); len(got) != 0 {
		t.Fatalf("expected no corrective move back to todo, got %v", got)
	}
	if len(rec.notices) != 1 {
		t.Fatalf("expected one notice, got %d", len(rec.notices))
	}
}

func TestDragBackToOriginEmitsNoNotice(t *testing.T) {
	s, c, rec := setup(t,
		domain.Column{ID: "a", Tasks: []domain.Task{task("t1"), task("t2")}},
		domain.Column{ID: "b"},
	)

	c.OnDragStart("t1")
	c.OnDragOver("t1", "b")
	c.OnDragOver("t1", "a")
	if _, ok := c.OnDragEnd(context.Background(), "t1", "a"); ok {
		t.Fatal("expected no notice when the task ends in its origin column")
	}
	if got := columnIDs(t, s, "a"); !reflect.DeepEqual(got, []string{"t2", "t1"}) {
		t.Fatalf("expected relocated task at the end of a, got %v", got)
	}
	if len(rec.notices) != 0 {
		t.Fatalf("unexpected notices %+v", rec.notices)
	}
}

func TestCancelAndRestartDoNotLeakState(t *testing.T) {
	_, c, rec := setup(t,
		domain.Column{ID: "a", Tasks: []domain.Task{task("t1"), task("t2")}},
		domain.Column{ID: "b"},
	)

	c.OnDragStart("t1")
	c.Cancel()
	if c.State() != Idle {
		t.Fatalf("expected idle after cancel, got %s", c.State())
	}
	if _, ok := c.OnDragEnd(context.Background(), "t1", "b"); ok {
		t.Fatal("drag end after cancel must not notify")
	}

	c.OnDragStart("t1")
	c.OnDragStart("t2")
	if id, ok := c.Active(); !ok || id != "t2" {
		t.Fatalf("expected t2 to be active, got %q %v", id, ok)
	}
	if c.OnDragOver("t1", "b") {
		t.Fatal("abandoned gesture must not relocate")
	}
	if len(rec.notices) != 0 {
		t.Fatalf("unexpected notices %+v", rec.notices)
	}
}

func TestNotifierFuncAndNilNotifier(t *testing.T) {
	s, err := board.New(domain.Board{Columns: []domain.Column{
		{ID: "a", Tasks: []domain.Task{task("t1")}},
		{ID: "b"},
	}})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var got []string
	c := NewController(s, NotifierFunc(func(_ context.Context, n domain.TaskMoved) {
		got = append(got, n.TaskID)
	}), nil)
	c.OnDragStart("t1")
	c.OnDragOver("t1", "b")
	c.OnDragEnd(context.Background(), "t1", "b")
	if !reflect.DeepEqual(got, []string{"t1"}) {
		t.Fatalf("unexpected notifications %v", got)
	}

	quiet := NewController(s, nil, nil)
	quiet.OnDragStart("t1")
	quiet.OnDragOver("t1", "a")
	if _, ok := quiet.OnDragEnd(context.Background(), "t1", "a"); !ok {
		t.Fatal("expected notice to be returned without a notifier")
	}
}
