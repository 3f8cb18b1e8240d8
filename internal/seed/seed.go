// Package seed loads the demo dataset: a YAML fixture of the standard
// periods and a set of named events, plus a deterministic generator for
// load-testing the query path with realistic volumes.
package seed

import (
	"context"
	_ "embed"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/store"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

//go:embed fixture.yaml
var fixtureYAML []byte

const insertWorkers = 8

type fixture struct {
	Periods []periodFixture `yaml:"periods"`
	Events  []eventFixture  `yaml:"events"`
}

type periodFixture struct {
	Name                 string `yaml:"name"`
	Description          string `yaml:"description"`
	StartYear            int    `yaml:"start_year"`
	EndYear              int    `yaml:"end_year"`
	RequiresSubscription bool   `yaml:"requires_subscription"`
}

type eventFixture struct {
	Title               string   `yaml:"title"`
	Summary             string   `yaml:"summary"`
	Description         string   `yaml:"description"`
	DescriptionHindi    string   `yaml:"description_hindi"`
	DescriptionHinglish string   `yaml:"description_hinglish"`
	EventType           string   `yaml:"event_type"`
	Year                *int     `yaml:"year"`
	Date                string   `yaml:"date"`
	StartYear           *int     `yaml:"start_year"`
	EndYear             *int     `yaml:"end_year"`
	StartDate           string   `yaml:"start_date"`
	EndDate             string   `yaml:"end_date"`
	LocationType        string   `yaml:"location_type"`
	Latitude            *float64 `yaml:"latitude"`
	Longitude           *float64 `yaml:"longitude"`
	PlaceName           string   `yaml:"place_name"`
	GeographicScope     string   `yaml:"geographic_scope"`
	AreaName            string   `yaml:"area_name"`
	Period              string   `yaml:"period"`
	Tags                []string `yaml:"tags"`
}

// Apply loads the fixture into the store. Every event goes through the
// validator, so a fixture that drifts from the invariants fails loudly
// instead of planting unqueryable rows.
func Apply(ctx context.Context, st store.Store, rules validate.Rules) (int, error) {
	var fx fixture
	if err := yaml.Unmarshal(fixtureYAML, &fx); err != nil {
		return 0, eris.Wrap(err, "seed: parse fixture")
	}

	periodIDs := make(map[string]string, len(fx.Periods))
	for _, pf := range fx.Periods {
		p, err := st.CreatePeriod(ctx, &model.Period{
			Name:                 pf.Name,
			Description:          pf.Description,
			StartYear:            pf.StartYear,
			EndYear:              pf.EndYear,
			RequiresSubscription: pf.RequiresSubscription,
		})
		if err != nil {
			return 0, eris.Wrapf(err, "seed: create period %s", pf.Name)
		}
		periodIDs[pf.Name] = p.ID
	}

	inputs := make([]validate.EventInput, 0, len(fx.Events))
	for _, ef := range fx.Events {
		in, err := ef.toInput(periodIDs)
		if err != nil {
			return 0, err
		}
		inputs = append(inputs, in)
	}

	return insertAll(ctx, st, rules, inputs)
}

// insertAll validates and inserts events concurrently.
func insertAll(ctx context.Context, st store.Store, rules validate.Rules, inputs []validate.EventInput) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(insertWorkers)

	for _, in := range inputs {
		g.Go(func() error {
			event, err := validate.Validate(in, rules)
			if err != nil {
				return eris.Wrapf(err, "seed: event %q", in.Title)
			}
			if _, err := st.CreateEvent(ctx, event); err != nil {
				return eris.Wrapf(err, "seed: insert %q", in.Title)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(inputs), nil
}

func (ef *eventFixture) toInput(periodIDs map[string]string) (validate.EventInput, error) {
	pid, ok := periodIDs[ef.Period]
	if !ok {
		return validate.EventInput{}, eris.Errorf("seed: event %q references unknown period %q", ef.Title, ef.Period)
	}

	in := validate.EventInput{
		Title:               ef.Title,
		Summary:             ef.Summary,
		Description:         ef.Description,
		DescriptionHindi:    ef.DescriptionHindi,
		DescriptionHinglish: ef.DescriptionHinglish,
		EventType:           ef.EventType,
		Year:                ef.Year,
		StartYear:           ef.StartYear,
		EndYear:             ef.EndYear,
		LocationType:        ef.LocationType,
		Latitude:            ef.Latitude,
		Longitude:           ef.Longitude,
		PlaceName:           ef.PlaceName,
		GeographicScope:     ef.GeographicScope,
		AreaName:            ef.AreaName,
		PeriodID:            pid,
		Tags:                ef.Tags,
	}

	var err error
	if in.Date, err = parseDay(ef.Date); err != nil {
		return in, eris.Wrapf(err, "seed: event %q date", ef.Title)
	}
	if in.StartDate, err = parseDay(ef.StartDate); err != nil {
		return in, eris.Wrapf(err, "seed: event %q start_date", ef.Title)
	}
	if in.EndDate, err = parseDay(ef.EndDate); err != nil {
		return in, eris.Wrapf(err, "seed: event %q end_date", ef.Title)
	}
	return in, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
