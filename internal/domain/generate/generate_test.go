package generate_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
)

func TestSalaries(t *testing.T) {
	Convey("Given the default range with devops selected", t, func() {
		s := filter.New(180000, 220000, market.DevOps)

		Convey("Then the salary is average times modifier", func() {
			out := generate.Salaries(s)
			So(len(out), ShouldEqual, 1)
			So(out[0].Position, ShouldEqual, market.DevOps)
			So(out[0].Salary, ShouldAlmostEqual, 240000, 0.001)
		})

		Convey("When the average doubles", func() {
			all := filter.New(100000, 140000, market.PositionKeys()...)
			doubled := filter.New(200000, 280000, market.PositionKeys()...)

			Convey("Then every salary doubles", func() {
				a, b := generate.Salaries(all), generate.Salaries(doubled)
				So(len(a), ShouldEqual, 12)
				for i := range a {
					So(b[i].Salary, ShouldEqual, 2*a[i].Salary)
				}
			})
		})

		Convey("When an unknown position is selected", func() {
			out := generate.Salaries(filter.New(180000, 220000, "cobol"))

			Convey("Then it is neutral", func() {
				So(out[0].Salary, ShouldEqual, 200000)
				So(out[0].Label, ShouldEqual, "cobol")
			})
		})

		Convey("When nothing is selected", func() {
			So(generate.Salaries(filter.New(1, 2)), ShouldBeEmpty)
		})
	})
}

func TestSkills(t *testing.T) {
	Convey("Given the skill adjustment", t, func() {
		So(generate.AdjustPercentage(85, 100000), ShouldEqual, 65)
		So(generate.AdjustPercentage(50, 100000), ShouldEqual, 40)
		So(generate.AdjustPercentage(95, 300000), ShouldEqual, 100)
		So(generate.AdjustPercentage(85, 200000), ShouldEqual, 85)
		So(generate.AdjustPercentage(85, 150000), ShouldEqual, 85)
		So(generate.AdjustPercentage(85, 250000), ShouldEqual, 85)

		Convey("When backend and data science both list Python", func() {
			s := filter.New(180000, 220000, market.Backend, market.DataScientist)
			out := generate.Skills(s)

			Convey("Then the later value wins and the first position is kept", func() {
				So(len(out), ShouldEqual, 9)
				So(out[0].Name, ShouldEqual, "Python")
				So(out[0].Percentage, ShouldEqual, 90)
				So(out[1].Name, ShouldEqual, "Java")
				So(out[5].Name, ShouldEqual, "Machine Learning")

				seen := map[string]bool{}
				for _, sk := range out {
					So(seen[sk.Name], ShouldBeFalse)
					seen[sk.Name] = true
				}
			})
		})

		Convey("When every position is selected at any salary level", func() {
			for _, avg := range []int{50000, 149999, 200000, 250001, 900000} {
				out := generate.Skills(filter.New(avg, avg, market.PositionKeys()...))
				So(out, ShouldNotBeEmpty)
				for _, sk := range out {
					So(sk.Percentage, ShouldBeBetweenOrEqual, 40, 100)
				}
			}
		})

		Convey("When nothing known is selected", func() {
			out := generate.Skills(filter.New(1, 2, "cobol"))
			So(out, ShouldNotBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestRequirements(t *testing.T) {
	Convey("Given the default range", t, func() {
		Convey("When devops is selected", func() {
			out := generate.Requirements(filter.New(180000, 220000, market.DevOps))

			Convey("Then its zero offsets keep the range", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].SalaryRangeLabel, ShouldEqual, "180000-220000")
				So(out[0].Company, ShouldEqual, "Tech Solutions")
			})
		})

		Convey("When sysadmin is selected", func() {
			out := generate.Requirements(filter.New(180000, 220000, market.Sysadmin))

			Convey("Then its asymmetric offsets apply", func() {
				So(out[0].SalaryRangeLabel, ShouldEqual, "160000-210000")
			})
		})

		Convey("When backend is selected", func() {
			out := generate.Requirements(filter.New(180000, 220000, market.Backend))

			Convey("Then the nice-to-have marker is preserved", func() {
				optional := 0
				for _, r := range out[0].Requirements {
					if model.IsOptional(r) {
						optional++
						So(model.StripMarker(r), ShouldEqual, "Docker")
					}
				}
				So(optional, ShouldEqual, 1)
			})
		})

		Convey("When generated twice for the same state", func() {
			s := filter.New(180000, 220000, market.PositionKeys()...)
			a, _ := json.Marshal(generate.Requirements(s))
			b, _ := json.Marshal(generate.Requirements(s))

			Convey("Then the output is byte-identical", func() {
				So(string(a), ShouldEqual, string(b))
			})
		})

		Convey("Then every label keeps min below max for valid states", func() {
			for _, bounds := range [][2]int{{0, 0}, {180000, 220000}, {100000, 100000}, {50000, 400000}} {
				for _, c := range generate.Requirements(filter.New(bounds[0], bounds[1], market.PositionKeys()...)) {
					var lo, hi int
					_, err := fmtSscanLabel(c.SalaryRangeLabel, &lo, &hi)
					So(err, ShouldBeNil)
					So(lo, ShouldBeLessThanOrEqualTo, hi)
				}
			}
		})

		Convey("When an unknown position is selected", func() {
			So(generate.Requirements(filter.New(1, 2, "cobol")), ShouldBeEmpty)
		})
	})
}

func TestDemandAndTrends(t *testing.T) {
	Convey("Given a selection", t, func() {
		s := filter.New(180000, 220000, market.Sysadmin, market.DevOps, "cobol")

		Convey("Then demand is filtered without changing scores", func() {
			out := generate.Demand(s)
			So(len(out), ShouldEqual, 2)
			So(out[0].Position, ShouldEqual, market.DevOps)
			So(out[0].DemandScore, ShouldEqual, 95)
			So(out[0].Color, ShouldEqual, "#2ecc71")
			So(out[1].Trend, ShouldEqual, market.Declining)
		})

		Convey("Then trends match the baseline at 200000", func() {
			out := generate.SalaryTrends(s)
			So(out.Years, ShouldResemble, market.TrendYears)
			So(len(out.Series), ShouldEqual, 2)
			So(out.Series[0].Values, ShouldResemble, [6]float64{120, 150, 180, 220, 250, 280})
		})

		Convey("When the average is scaled", func() {
			half := generate.SalaryTrends(filter.New(90000, 110000, market.DevOps))
			double := generate.SalaryTrends(filter.New(360000, 440000, market.DevOps))

			Convey("Then every point scales with it", func() {
				So(half.Series[0].Values, ShouldResemble, [6]float64{60, 75, 90, 110, 125, 140})
				So(double.Series[0].Values, ShouldResemble, [6]float64{240, 300, 360, 440, 500, 560})
			})
		})
	})
}

func TestDetailed(t *testing.T) {
	Convey("Given averages around the detailed boundaries", t, func() {
		So(generate.Detailed(filter.New(100000, 100000)).Tier, ShouldEqual, market.TierJunior)
		So(generate.Detailed(filter.New(149999, 149999)).Tier, ShouldEqual, market.TierJunior)
		So(generate.Detailed(filter.New(149999, 150000)).Tier, ShouldEqual, market.TierJunior)
		So(generate.Detailed(filter.New(150000, 150000)).Tier, ShouldEqual, market.TierMiddle)
		So(generate.Detailed(filter.New(199999, 199999)).Tier, ShouldEqual, market.TierMiddle)
		So(generate.Detailed(filter.New(199999, 200000)).Tier, ShouldEqual, market.TierMiddle)
		So(generate.Detailed(filter.New(200000, 200000)).Tier, ShouldEqual, market.TierSenior)
		So(generate.Detailed(filter.New(180000, 220000)).Tier, ShouldEqual, market.TierSenior)

		g := generate.Detailed(filter.New(100000, 100000))
		So(g.CoreTechnologies[0].Description, ShouldNotBeEmpty)
	})
}

func TestRegional(t *testing.T) {
	Convey("Given a regional run", t, func() {
		s := filter.New(180000, 220000, market.DevOps, market.Backend)

		Convey("When the source returns its extremes", func() {
			for _, r := range []float64{0, 0.5, 0.999999, 1, -3} {
				out := generate.Regional(s, generate.NewSequence(r))
				So(len(out), ShouldEqual, 8)
				for _, e := range out {
					reg, _ := market.LookupRegion(e.Region)
					So(e.TotalVacancies, ShouldBeGreaterThanOrEqualTo, 500*reg.DemandCoef)
					So(e.TotalVacancies, ShouldBeLessThanOrEqualTo, 1499*reg.DemandCoef)
					So(e.MarketShare, ShouldBeBetweenOrEqual, 10, 39)
					for _, d := range e.Demand {
						So(d, ShouldBeGreaterThanOrEqualTo, 60*reg.DemandCoef)
						So(d, ShouldBeLessThanOrEqualTo, 99*reg.DemandCoef)
					}
				}
			}
		})

		Convey("When the source is scripted", func() {
			seq := generate.NewSequence(0.25, 0.5, 0.0, 0.75)
			out := generate.Regional(s, seq)

			Convey("Then region draws precede position draws", func() {
				moscow := out[0]
				So(moscow.Region, ShouldEqual, market.Moscow)
				So(moscow.TotalVacancies, ShouldEqual, 750*1.5)
				So(moscow.MarketShare, ShouldEqual, 25)
				So(moscow.Demand[market.DevOps], ShouldEqual, 60*1.5)
				So(moscow.Demand[market.Backend], ShouldEqual, 90*1.5)
				So(seq.Drawn(), ShouldEqual, 8*4)
			})

			Convey("Then salaries are rounded products", func() {
				So(out[0].Salaries[market.DevOps], ShouldEqual, 336000)
				So(out[1].Salaries[market.DevOps], ShouldEqual, 288000)
			})
		})

		Convey("When nothing is selected", func() {
			out := generate.Regional(filter.New(1, 2), generate.NewSequence(0.5))

			Convey("Then the regions still populate", func() {
				So(len(out), ShouldEqual, 8)
				So(out[0].Salaries, ShouldBeEmpty)
				So(out[0].TotalVacancies, ShouldBeGreaterThan, 0)
			})

			Convey("Then the summary reports a zero average", func() {
				sum := generate.RegionalSummary(out)
				So(sum[0].AvgSalary, ShouldEqual, 0)
				So(sum[0].Vacancies, ShouldEqual, 1500)
				So(sum[0].MarketShare, ShouldEqual, 25)
			})
		})

		Convey("When summarizing a populated region", func() {
			entries := []model.RegionalEntry{{
				Region:         market.Kazan,
				Salaries:       map[market.PositionKey]int{market.DevOps: 100, market.QA: 201},
				TotalVacancies: 849.15,
			}}
			sum := generate.RegionalSummary(entries)
			So(sum[0].AvgSalary, ShouldEqual, 151)
			So(sum[0].Vacancies, ShouldEqual, 849)
		})
	})
}

func TestSkillHistory(t *testing.T) {
	Convey("Given a scripted history source", t, func() {
		h := generate.SkillHistory(generate.NewSequence(0.5))

		Convey("Then every tracked skill has six bounded points", func() {
			So(len(h.Series), ShouldEqual, 14)
			So(h.Months, ShouldResemble, market.HistoryMonths)
			for _, ts := range h.Series {
				for _, v := range ts.Values {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			}
		})

		Convey("Then trend classes shape the series", func() {
			byName := map[string]model.TrendSeries{}
			for _, ts := range h.Series {
				byName[ts.Label] = ts
			}
			So(byName["Python"].Values, ShouldResemble, [6]float64{65, 69, 73, 77, 81, 85})
			So(byName["Angular"].Values, ShouldResemble, [6]float64{65, 62.5, 60, 57.5, 55, 52.5})
			So(byName["Java"].Values, ShouldResemble, [6]float64{65, 65, 65, 65, 65, 65})
		})

		Convey("Then current skills are ranked by the last point", func() {
			cur := generate.CurrentSkills(h)
			So(len(cur), ShouldEqual, 14)
			So(cur[0].Name, ShouldEqual, "Python")
			So(cur[0].Percentage, ShouldEqual, 85)
			for i := 1; i < len(cur); i++ {
				So(cur[i-1].Percentage, ShouldBeGreaterThanOrEqualTo, cur[i].Percentage)
			}
		})

		Convey("When a rising skill overshoots", func() {
			high := generate.SkillHistory(generate.NewSequence(0.99999))
			for _, ts := range high.Series {
				So(ts.Values[5], ShouldBeLessThanOrEqualTo, 100)
			}
		})
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a generator with scripted sources", t, func() {
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		hist := generate.NewSequence(0.5)
		g := generate.New(
			generate.WithSource(generate.NewSequence(0.5)),
			generate.WithHistorySource(hist),
			generate.WithClock(func() time.Time { return at }),
		)
		drawn := hist.Drawn()

		Convey("When generating twice with different filters", func() {
			a := g.Generate(filter.New(180000, 220000, market.DevOps), 1, model.ReasonStartup)
			b := g.Generate(filter.New(100000, 120000, market.QA, market.Mobile), 2, model.ReasonRefresh)

			Convey("Then the history is not redrawn", func() {
				So(hist.Drawn(), ShouldEqual, drawn)
				So(a.SkillHistory, ShouldResemble, b.SkillHistory)
			})

			Convey("Then the bundles carry their metadata", func() {
				So(a.ID, ShouldNotEqual, b.ID)
				So(a.Cycle, ShouldEqual, uint64(1))
				So(b.Reason, ShouldEqual, model.ReasonRefresh)
				So(a.GeneratedAt, ShouldEqual, at)
				So(a.AvgSalary, ShouldEqual, 200000)
				So(len(a.TopJobs), ShouldEqual, 5)
				So(len(a.Regional), ShouldEqual, 8)
				So(b.Filter.Selected, ShouldResemble, []market.PositionKey{market.QA, market.Mobile})
			})
		})

		Convey("When the caller mutates the returned history", func() {
			h := g.SkillHistory()
			h.Series[0].Values[0] = -1

			Convey("Then the generator keeps its copy", func() {
				So(g.SkillHistory().Series[0].Values[0], ShouldNotEqual, -1)
			})
		})

		Convey("When the selection is empty", func() {
			b := g.Generate(filter.New(180000, 220000), 1, model.ReasonFilterReplaced)

			Convey("Then per-position datasets are empty and the rest populate", func() {
				So(b.Salaries, ShouldBeEmpty)
				So(b.Skills, ShouldBeEmpty)
				So(b.Requirements, ShouldBeEmpty)
				So(b.Demand, ShouldBeEmpty)
				So(b.SalaryTrends.Series, ShouldBeEmpty)
				So(len(b.Regional), ShouldEqual, 8)
				So(len(b.SkillHistory.Series), ShouldEqual, 14)
			})
		})
	})
}
