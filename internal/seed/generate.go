package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/store"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

// template is a reusable event skeleton; the generator fills in years and
// locations per period.
type template struct {
	title   string
	summary string
	tags    []string
}

var templates = []template{
	{"Trade Route Establishment", "A new trade route connects major cities, moving goods, ideas and cultural practice.", []string{"economic", "cultural"}},
	{"Temple Construction", "A significant temple is raised, becoming a center of worship and community life.", []string{"religious", "cultural"}},
	{"Agricultural Innovation", "New farming techniques and irrigation raise crop yields across the region.", []string{"technological", "economic"}},
	{"Military Campaign", "A major expedition extends territorial control over neighboring regions.", []string{"military", "political"}},
	{"Dynasty Foundation", "A new ruling house takes power and will govern for generations.", []string{"political", "history"}},
	{"Religious Reform", "Changes to religious practice reshape daily life and social structure.", []string{"religious", "social"}},
	{"City Foundation", "A new urban center emerges as a hub of trade, culture and governance.", []string{"history", "economic"}},
	{"Literary Work", "A major work of poetry or prose preserves the era's knowledge and values.", []string{"cultural", "history"}},
}

// cities are representative coordinates used to scatter generated events.
var cities = []struct {
	name     string
	lat, lng float64
}{
	{"Delhi", 28.6139, 77.2090},
	{"Mumbai", 19.0760, 72.8777},
	{"Kolkata", 22.5726, 88.3639},
	{"Chennai", 13.0827, 80.2707},
	{"Varanasi", 25.3176, 82.9739},
	{"Ujjain", 23.1793, 75.7849},
	{"Madurai", 9.9252, 78.1198},
	{"Patna", 25.5941, 85.1376},
}

// Generate produces count synthetic events spread across the given periods.
// The output is deterministic for a given seed so test fixtures and demo
// environments are reproducible.
func Generate(count int, periods []model.Period, rules validate.Rules, randSeed int64) []validate.EventInput {
	rng := rand.New(rand.NewSource(randSeed))
	inputs := make([]validate.EventInput, 0, count)

	for i := 0; i < count; i++ {
		p := periods[i%len(periods)]
		tpl := templates[rng.Intn(len(templates))]
		city := cities[rng.Intn(len(cities))]

		span := p.EndYear - p.StartYear
		if span <= 0 {
			span = 1
		}
		year := p.StartYear + rng.Intn(span)
		// Open-ended periods (end year 9999) stay within the present.
		if year > time.Now().Year() {
			year = time.Now().Year() - rng.Intn(50)
		}

		lat := city.lat + rng.Float64()*0.5 - 0.25
		lng := city.lng + rng.Float64()*0.5 - 0.25

		in := validate.EventInput{
			Title:        fmt.Sprintf("%s (%d)", tpl.title, i+1),
			Summary:      tpl.summary,
			LocationType: string(model.LocationPoint),
			Latitude:     &lat,
			Longitude:    &lng,
			PlaceName:    city.name,
			PeriodID:     p.ID,
			Tags:         tpl.tags,
		}

		// Roughly a fifth of generated events span a range of years.
		if rng.Intn(5) == 0 {
			start := year
			end := start + 1 + rng.Intn(40)
			if end > p.EndYear {
				end = p.EndYear
			}
			if end > time.Now().Year() {
				end = time.Now().Year()
			}
			if end < start {
				end = start
			}
			in.EventType = string(model.EventInterval)
			in.StartYear = &start
			in.EndYear = &end
			if start >= rules.ModernEraYear {
				sd := time.Date(start, time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
				in.StartDate = &sd
			}
			if end >= rules.ModernEraYear {
				ed := time.Date(end, time.December, 28, 0, 0, 0, 0, time.UTC)
				in.EndDate = &ed
			}
		} else {
			in.EventType = string(model.EventPoint)
			in.Year = &year
			if year >= rules.ModernEraYear {
				d := time.Date(year, time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
				in.Date = &d
			}
		}

		inputs = append(inputs, in)
	}
	return inputs
}

// GenerateInto generates count events and inserts them through the normal
// validated write path.
func GenerateInto(ctx context.Context, st store.Store, rules validate.Rules, count int, randSeed int64) (int, error) {
	periods, err := st.ListPeriods(ctx)
	if err != nil {
		return 0, err
	}
	if len(periods) == 0 {
		return 0, nil
	}
	return insertAll(ctx, st, rules, Generate(count, periods, rules, randSeed))
}
