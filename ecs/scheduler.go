package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type executor interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []executor

	name      string
	execCount int64
	minDur    time.Duration
	maxDur    time.Duration
	totalDur  time.Duration
	lastDur   time.Duration
}

// Scheduler runs systems in registration order against one Storage.
type Scheduler struct {
	storage  *Storage
	systems  []*registeredSystem
	commands *Commands
}

// NewScheduler creates a scheduler for storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage:  storage,
		commands: newCommands(),
	}
}

// Storage returns the storage the scheduler runs against.
func (s *Scheduler) Storage() *Storage { return s.storage }

// Register appends a system and binds its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	rs := &registeredSystem{
		system: system,
		name:   systemName(system),
		minDur: time.Duration(1<<63 - 1),
	}
	rs.queries = s.bindFields(system)
	s.systems = append(s.systems, rs)
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// bindFields initialises exported Query[...] and Singleton[...] fields and
// returns the queries that must be refreshed before the system runs.
func (s *Scheduler) bindFields(system System) []executor {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	var queries []executor
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		isQuery := strings.HasPrefix(typeName, "Query[")
		if !isQuery && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		init := field.Addr().MethodByName("Init")
		if !init.IsValid() {
			panic("ecs: Init method not found on field " + value.Type().Field(i).Name)
		}
		init.Call([]reflect.Value{reflect.ValueOf(s.storage)})

		if isQuery {
			queries = append(queries, field.Addr().Interface().(executor))
		}
	}
	return queries
}

// Once runs every system with the given frame length in seconds, then flushes
// the commands they queued.
func (s *Scheduler) Once(dt float64) {
	frame := &UpdateFrame{
		DeltaTime: dt,
		Commands:  s.commands,
		Storage:   s.storage,
	}

	for _, rs := range s.systems {
		start := time.Now()
		for _, q := range rs.queries {
			q.Execute()
		}
		rs.system.Execute(frame)
		d := time.Since(start)

		rs.execCount++
		rs.lastDur = d
		rs.totalDur += d
		rs.minDur = min(rs.minDur, d)
		rs.maxDur = max(rs.maxDur, d)
	}

	s.commands.Flush(s.storage)
}

// Run calls Once at the given interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Once(dt)
		}
	}
}

// GetStats returns per-system timing collected so far.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, rs := range s.systems {
		var avg time.Duration
		minDur := rs.minDur
		if rs.execCount > 0 {
			avg = rs.totalDur / time.Duration(rs.execCount)
		} else {
			minDur = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           rs.name,
			ExecutionCount: rs.execCount,
			MinDuration:    minDur,
			MaxDuration:    rs.maxDur,
			AvgDuration:    avg,
			LastDuration:   rs.lastDur,
			TotalDuration:  rs.totalDur,
		}
		stats.TotalExecutions += rs.execCount
	}
	return stats
}
