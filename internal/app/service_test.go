package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/jobmarket/internal/app"
	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/logger"
)

func init() {
	logger.Discard()
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it exposes the enumerations before starting", func() {
			So(svc, ShouldNotBeNil)
			So(len(svc.Positions()), ShouldEqual, 12)
			So(svc.Positions()[0].Key, ShouldEqual, "devops")
			So(svc.Positions()[0].Label, ShouldEqual, "DevOps")
			So(len(svc.Regions()), ShouldEqual, 8)
			So(svc.Regions()[1].Label, ShouldEqual, "Санкт-Петербург")
			So(svc.Filter().AvgSalary(), ShouldEqual, 200000)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Then operations report it is stopped", func() {
			_, err := svc.Refresh(context.Background())
			So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
			_, err = svc.Latest(context.Background())
			So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
		})
	})

	Convey("Given an invalid initial filter", t, func() {
		svc := service.New(service.WithInitialFilter(filter.New(5, 1)))

		Convey("Then start refuses it", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithInitialFilter(filter.New(180000, 220000, market.DevOps)))
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then the startup cycle has been published", func() {
			b, err := svc.Latest(ctx)
			So(err, ShouldBeNil)
			So(b.Cycle, ShouldEqual, uint64(1))
			So(b.Reason, ShouldEqual, model.ReasonStartup)
			So(b.Salaries[0].Salary, ShouldAlmostEqual, 240000, 0.001)
			So(b.Requirements[0].SalaryRangeLabel, ShouldEqual, "180000-220000")

			d, err := svc.Dataset(ctx, model.KindRequirements)
			So(err, ShouldBeNil)
			So(d.BundleID, ShouldEqual, b.ID)

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["cycles"], ShouldEqual, uint64(1))
			So(stats["state"], ShouldEqual, "idle")
			So(stats["snapshots"], ShouldEqual, len(model.PublishOrder))
		})

		Convey("When stopping the service", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it is marked stopped and rejects triggers", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Refresh(ctx)
				So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
			})

			Convey("Then the last snapshot is still readable", func() {
				b, err := svc.Latest(ctx)
				So(err, ShouldBeNil)
				So(b.Cycle, ShouldEqual, uint64(1))
			})
		})
	})
}

func TestService_FilterOperations(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When replacing the filter with sysadmin", func() {
			b, err := svc.OnFilterChanged(ctx, filter.State{MinSalary: 180000, MaxSalary: 220000, Selected: []market.PositionKey{market.Sysadmin, market.Sysadmin}})

			Convey("Then the bundle reflects it", func() {
				So(err, ShouldBeNil)
				So(b.Reason, ShouldEqual, model.ReasonFilterReplaced)
				So(b.Filter.Selected, ShouldResemble, []market.PositionKey{market.Sysadmin})
				So(b.Requirements[0].SalaryRangeLabel, ShouldEqual, "160000-210000")
				So(svc.Filter().Selected, ShouldResemble, []market.PositionKey{market.Sysadmin})
			})
		})

		Convey("When toggling a position twice", func() {
			on, err := svc.TogglePosition(ctx, market.Backend)
			So(err, ShouldBeNil)
			off, err := svc.TogglePosition(ctx, market.Backend)
			So(err, ShouldBeNil)

			Convey("Then it is added then removed", func() {
				So(on.Filter.IsSelected(market.Backend), ShouldBeTrue)
				So(off.Filter.IsSelected(market.Backend), ShouldBeFalse)
				So(off.Cycle, ShouldEqual, on.Cycle+1)
			})
		})

		Convey("When the salary range is reversed", func() {
			before := svc.Filter()
			_, err := svc.SetSalaryRange(ctx, 300000, 100000)

			Convey("Then it is rejected without a cycle", func() {
				So(errors.Is(err, service.ErrInvalidFilter), ShouldBeTrue)
				So(errors.Is(err, filter.ErrInvalidRange), ShouldBeTrue)
				So(svc.Filter(), ShouldResemble, before)
				b, _ := svc.Latest(ctx)
				So(b.Cycle, ShouldEqual, uint64(1))
				So(svc.GetStats()["rejected"], ShouldEqual, uint64(1))
			})
		})

		Convey("When the salary range is negative", func() {
			_, err := svc.SetSalaryRange(ctx, -10, 100)
			So(errors.Is(err, filter.ErrInvalidBounds), ShouldBeTrue)
		})

		Convey("When the salary range changes", func() {
			b, err := svc.SetSalaryRange(ctx, 90000, 110000)

			Convey("Then the tiers follow the new average", func() {
				So(err, ShouldBeNil)
				So(b.AvgSalary, ShouldEqual, 100000)
				So(b.Detailed.Tier, ShouldEqual, market.TierJunior)
				So(b.Reason, ShouldEqual, model.ReasonSalaryChanged)
			})
		})

		Convey("When refreshing", func() {
			a, _ := svc.Refresh(ctx)
			b, _ := svc.Refresh(ctx)

			Convey("Then the history is stable across cycles", func() {
				So(b.Cycle, ShouldEqual, a.Cycle+1)
				So(a.ID, ShouldNotEqual, b.ID)
				So(a.SkillHistory, ShouldResemble, b.SkillHistory)
			})
		})
	})
}

func TestService_DeterministicSources(t *testing.T) {
	Convey("Given scripted randomness", t, func() {
		svc := startService(
			service.WithInitialFilter(filter.New(180000, 220000, market.DevOps)),
			service.WithRandomSource(generate.NewSequence(0.5)),
			service.WithHistorySource(generate.NewSequence(0.5)),
		)
		defer svc.Stop()

		b, err := svc.Latest(context.Background())
		So(err, ShouldBeNil)
		So(b.Regional[0].TotalVacancies, ShouldEqual, 1500)
		So(b.Regional[0].MarketShare, ShouldEqual, 25)
		So(b.Regional[0].Demand[market.DevOps], ShouldEqual, 120)
		So(b.SkillHistory.Series[0].Values[0], ShouldEqual, 65)
	})
}

type recordingSink struct {
	mu    sync.Mutex
	seen  []model.Dataset
	fail  error
	panic bool
}

func (r *recordingSink) Publish(_ context.Context, d model.Dataset) error {
	r.mu.Lock()
	r.seen = append(r.seen, d)
	r.mu.Unlock()
	if r.panic {
		panic("sink exploded")
	}
	return r.fail
}

func (r *recordingSink) datasets() []model.Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Dataset(nil), r.seen...)
}

type recordingObserver struct {
	mu      sync.Mutex
	sink    *recordingSink
	bundles []*model.Bundle
	seenAt  []int
}

func (o *recordingObserver) CycleCompleted(_ context.Context, b *model.Bundle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bundles = append(o.bundles, b)
	o.seenAt = append(o.seenAt, len(o.sink.datasets()))
}

func TestService_Publishing(t *testing.T) {
	Convey("Given subscribers on a started service", t, func() {
		svc := startService()
		defer svc.Stop()
		ctx := context.Background()

		all := &recordingSink{}
		cancelAll := svc.SubscribeAll(all)
		failing := &recordingSink{fail: errors.New("view gone")}
		svc.Subscribe(model.KindSkills, failing)
		panicking := &recordingSink{panic: true}
		svc.Subscribe(model.KindDemand, panicking)
		obs := &recordingObserver{sink: all}
		svc.Observe(obs)

		Convey("When a cycle runs", func() {
			b, err := svc.Refresh(ctx)

			Convey("Then sink failures do not reach the caller", func() {
				So(err, ShouldBeNil)
				So(b, ShouldNotBeNil)
				So(len(failing.datasets()), ShouldEqual, 1)
				So(len(panicking.datasets()), ShouldEqual, 1)
			})

			Convey("Then datasets arrive in publish order", func() {
				got := all.datasets()
				So(len(got), ShouldEqual, len(model.PublishOrder))
				for i, d := range got {
					So(d.Kind, ShouldEqual, model.PublishOrder[i])
					So(d.BundleID, ShouldEqual, b.ID)
				}
			})

			Convey("Then observers hear about the cycle after every dataset", func() {
				obs.mu.Lock()
				defer obs.mu.Unlock()
				So(len(obs.bundles), ShouldEqual, 1)
				So(obs.bundles[0].ID, ShouldEqual, b.ID)
				So(obs.seenAt[0], ShouldEqual, len(model.PublishOrder))
			})
		})

		Convey("When a subscriber cancels", func() {
			cancelAll()
			_, err := svc.Refresh(ctx)

			Convey("Then it receives nothing more", func() {
				So(err, ShouldBeNil)
				So(all.datasets(), ShouldBeEmpty)
				So(svc.GetStats()["subscribers"], ShouldEqual, 2)
			})
		})
	})
}

func TestService_Serialization(t *testing.T) {
	Convey("Given many concurrent filter changes", t, func() {
		svc := startService(service.WithQueueSize(256))
		defer svc.Stop()
		ctx := context.Background()

		sink := &recordingSink{}
		svc.SubscribeAll(sink)

		keys := market.PositionKeys()
		var wg sync.WaitGroup
		errs := make(chan error, 48)
		for i := 0; i < 48; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				var err error
				switch i % 3 {
				case 0:
					_, err = svc.TogglePosition(ctx, keys[i%len(keys)])
				case 1:
					_, err = svc.SetSalaryRange(ctx, 100000+i*1000, 200000+i*1000)
				default:
					_, err = svc.Refresh(ctx)
				}
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		Convey("Then every change runs in its own cycle", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			got := sink.datasets()
			So(len(got), ShouldEqual, 48*len(model.PublishOrder))
		})

		Convey("Then no cycle interleaves with another", func() {
			got := sink.datasets()
			n := len(model.PublishOrder)
			for i := 0; i+n <= len(got); i += n {
				cycle := got[i].Cycle
				for j := 0; j < n; j++ {
					So(got[i+j].Cycle, ShouldEqual, cycle)
					So(got[i+j].Kind, ShouldEqual, model.PublishOrder[j])
				}
				if i > 0 {
					So(cycle, ShouldEqual, got[i-1].Cycle+1)
				}
			}
		})
	})
}

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSink) Publish(context.Context, model.Dataset) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return nil
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a queue of one and a slow view", t, func() {
		svc := startService(service.WithQueueSize(1), service.WithPublishTimeout(10*time.Second))
		defer svc.Stop()
		ctx := context.Background()

		slow := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
		svc.Subscribe(model.KindSkills, slow)

		first := make(chan error, 1)
		go func() {
			_, err := svc.SetSalaryRange(ctx, 100000, 120000)
			first <- err
		}()
		<-slow.entered

		second := make(chan error, 1)
		go func() {
			_, err := svc.Refresh(ctx)
			second <- err
		}()
		deadline := time.Now().Add(2 * time.Second)
		for svc.GetStats()["queueLength"] != 1 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}

		Convey("When another change arrives while one is queued", func() {
			_, err := svc.Refresh(ctx)

			Convey("Then it is refused and the others complete", func() {
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				So(svc.State().String(), ShouldEqual, "publishing")
				close(slow.release)
				So(<-first, ShouldBeNil)
				So(<-second, ShouldBeNil)
			})
		})
	})
}

func TestService_CallerTimeout(t *testing.T) {
	Convey("Given a cycle stuck on a slow view", t, func() {
		svc := startService(service.WithPublishTimeout(10 * time.Second))
		defer svc.Stop()
		ctx := context.Background()

		slow := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
		svc.Subscribe(model.KindSkills, slow)

		first := make(chan error, 1)
		go func() {
			_, err := svc.Refresh(ctx)
			first <- err
		}()
		<-slow.entered

		Convey("When the caller gives up waiting", func() {
			wctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err := svc.Refresh(wctx)

			Convey("Then it gets its context error and the cycle still runs", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				close(slow.release)
				So(<-first, ShouldBeNil)
				b, err := svc.Refresh(ctx)
				So(err, ShouldBeNil)
				So(b.Cycle, ShouldEqual, uint64(4))
			})
		})
	})
}
