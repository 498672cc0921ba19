package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/jobmarket/internal/adapters/mq/queue"
	worker "github.com/okian/jobmarket/internal/adapters/mq/worker"
	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	logging "github.com/okian/jobmarket/pkg/logger"
)

func init() {
	logging.Discard()
}

type mockQueue struct {
	triggers chan queue.Trigger
}

func newMockQueue() *mockQueue {
	return &mockQueue{triggers: make(chan queue.Trigger, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Trigger {
	return mq.triggers
}

type mockGenerator struct {
	mu       sync.Mutex
	states   []filter.State
	inFlight atomic.Int32
	overlap  atomic.Bool
	w        *worker.InMemoryWorker
	phases   []worker.Phase
}

func (g *mockGenerator) Generate(s filter.State, cycle uint64, reason model.Reason) *model.Bundle {
	if g.inFlight.Add(1) > 1 {
		g.overlap.Store(true)
	}
	defer g.inFlight.Add(-1)
	time.Sleep(time.Millisecond)

	g.mu.Lock()
	g.states = append(g.states, s)
	if g.w != nil {
		g.phases = append(g.phases, g.w.Phase())
	}
	g.mu.Unlock()
	return &model.Bundle{Cycle: cycle, Reason: reason, Filter: s}
}

type mockPublisher struct {
	mu      sync.Mutex
	bundles []*model.Bundle
	w       *worker.InMemoryWorker
	phases  []worker.Phase
}

func (p *mockPublisher) Publish(_ context.Context, b *model.Bundle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bundles = append(p.bundles, b)
	if p.w != nil {
		p.phases = append(p.phases, p.w.Phase())
	}
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bundles)
}

func setSalary(minSalary, maxSalary int) queue.Mutation {
	return func(s filter.State) (filter.State, error) {
		return s.WithSalary(minSalary, maxSalary), nil
	}
}

func toggle(key market.PositionKey) queue.Mutation {
	return func(s filter.State) (filter.State, error) {
		return s.Toggle(key), nil
	}
}

func await(t queue.Trigger) queue.Outcome {
	select {
	case o := <-t.Reply:
		return o
	case <-time.After(2 * time.Second):
		return queue.Outcome{Err: errors.New("timed out waiting for reply")}
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		gen := &mockGenerator{}
		pub := &mockPublisher{}
		w := worker.NewInMemoryWorker(q, gen, pub, filter.New(180000, 220000, market.DevOps), worker.WithName("test"))
		gen.w, pub.w = w, w

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.So(w.Phase(), convey.ShouldEqual, worker.Idle)

		convey.Convey("When a salary trigger arrives", func() {
			trig := queue.NewTrigger(model.ReasonSalaryChanged, setSalary(100000, 120000))
			q.triggers <- trig
			o := await(trig)

			convey.Convey("Then one cycle runs against the new state", func() {
				convey.So(o.Err, convey.ShouldBeNil)
				convey.So(o.Bundle.Cycle, convey.ShouldEqual, uint64(1))
				convey.So(o.Bundle.Filter.MinSalary, convey.ShouldEqual, 100000)
				convey.So(o.Bundle.Filter.Selected, convey.ShouldResemble, []market.PositionKey{market.DevOps})
				convey.So(w.Filter().MaxSalary, convey.ShouldEqual, 120000)
				convey.So(w.Cycles(), convey.ShouldEqual, uint64(1))
				convey.So(pub.count(), convey.ShouldEqual, 1)
			})

			convey.Convey("Then the state machine moves through every phase", func() {
				convey.So(gen.phases, convey.ShouldResemble, []worker.Phase{worker.Generating})
				convey.So(pub.phases, convey.ShouldResemble, []worker.Phase{worker.Publishing})
				convey.So(w.Phase(), convey.ShouldEqual, worker.Idle)
			})
		})

		convey.Convey("When a trigger would reverse the range", func() {
			trig := queue.NewTrigger(model.ReasonSalaryChanged, setSalary(300000, 100000))
			q.triggers <- trig
			o := await(trig)

			convey.Convey("Then it is rejected and nothing runs", func() {
				convey.So(errors.Is(o.Err, filter.ErrInvalidRange), convey.ShouldBeTrue)
				convey.So(o.Bundle, convey.ShouldBeNil)
				convey.So(w.Filter().MinSalary, convey.ShouldEqual, 180000)
				convey.So(w.Cycles(), convey.ShouldEqual, uint64(0))
				convey.So(w.Rejected(), convey.ShouldEqual, uint64(1))
				convey.So(pub.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the mutation itself fails", func() {
			boom := errors.New("boom")
			trig := queue.NewTrigger(model.ReasonFilterReplaced, func(filter.State) (filter.State, error) {
				return filter.State{}, boom
			})
			q.triggers <- trig

			convey.Convey("Then its error is returned", func() {
				convey.So(errors.Is(await(trig).Err, boom), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When many triggers arrive back to back", func() {
			keys := market.PositionKeys()
			trigs := make([]queue.Trigger, 0, len(keys))
			for _, k := range keys {
				trig := queue.NewTrigger(model.ReasonPositionToggle, toggle(k))
				trigs = append(trigs, trig)
				q.triggers <- trig
			}
			for _, trig := range trigs {
				convey.So(await(trig).Err, convey.ShouldBeNil)
			}

			convey.Convey("Then cycles never overlap and each sees the previous result", func() {
				convey.So(gen.overlap.Load(), convey.ShouldBeFalse)
				gen.mu.Lock()
				defer gen.mu.Unlock()
				convey.So(len(gen.states), convey.ShouldEqual, len(keys))
				convey.So(gen.states[0].Selected, convey.ShouldBeEmpty)
				convey.So(len(gen.states[len(keys)-1].Selected), convey.ShouldEqual, len(keys)-1)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then the loop exits and a second shutdown is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				<-w.Done()
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPhaseString(t *testing.T) {
	convey.Convey("Given the phases", t, func() {
		convey.So(worker.Idle.String(), convey.ShouldEqual, "idle")
		convey.So(worker.Generating.String(), convey.ShouldEqual, "generating")
		convey.So(worker.Publishing.String(), convey.ShouldEqual, "publishing")
		convey.So(worker.Phase(9).String(), convey.ShouldEqual, "phase(9)")
	})
}

func TestWorkerStopsWhenQueueCloses(t *testing.T) {
	convey.Convey("Given a worker on a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := worker.NewInMemoryWorker(q, &mockGenerator{}, &mockPublisher{}, filter.New(1, 2))
		go w.Run(context.Background())

		trig := queue.NewTrigger(model.ReasonRefresh, nil)
		convey.So(q.Enqueue(context.Background(), trig), convey.ShouldBeNil)
		convey.So(await(trig).Err, convey.ShouldBeNil)

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the loop exits", func() {
				select {
				case <-w.Done():
				case <-time.After(2 * time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
