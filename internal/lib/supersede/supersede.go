// Package supersede реализует правило "побеждает последний запрос" для
// асинхронных операций одного вида.
//
// Каждый Begin отменяет контекст предыдущей задачи того же вида. Результат
// задачи можно применять, только пока Current возвращает true, причем проверка
// и применение должны выполняться под тем же мьютексом, что защищает состояние.
package supersede

import (
	"context"
	"sync"
)

// Group задачи, сгруппированные по виду.
type Group struct {
	mu    sync.Mutex
	seq   uint64
	tasks map[string]*Task
}

// Task одна выполняемая операция.
type Task struct {
	group  *Group
	kind   string
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// New создает пустую группу.
func New() *Group {
	return &Group{tasks: make(map[string]*Task)}
}

// Begin запускает задачу вида kind и отменяет предыдущую задачу этого вида.
func (g *Group) Begin(parent context.Context, kind string) *Task {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	t := &Task{group: g, kind: kind, seq: g.seq, ctx: ctx, cancel: cancel}
	if prev, ok := g.tasks[kind]; ok {
		prev.cancel()
	}
	g.tasks[kind] = t
	return t
}

// Context контекст задачи. Отменяется, когда задачу вытесняют.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Current сообщает, что задача все еще последняя своего вида.
func (t *Task) Current() bool {
	t.group.mu.Lock()
	defer t.group.mu.Unlock()
	cur, ok := t.group.tasks[t.kind]
	return ok && cur.seq == t.seq
}

// Done освобождает задачу. Вызывать после применения или отбрасывания результата.
func (t *Task) Done() {
	t.group.mu.Lock()
	if cur, ok := t.group.tasks[t.kind]; ok && cur.seq == t.seq {
		delete(t.group.tasks, t.kind)
	}
	t.group.mu.Unlock()
	t.cancel()
}

// Busy сообщает, выполняется ли задача вида kind.
func (g *Group) Busy(kind string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.tasks[kind]
	return ok
}

// InFlight количество выполняемых задач.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// CancelAll отменяет все задачи. Их результаты больше не будут текущими.
func (g *Group) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for kind, t := range g.tasks {
		t.cancel()
		delete(g.tasks, kind)
	}
}
