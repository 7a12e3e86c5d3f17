package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"turnero/internal/model"
)

// ScheduleConfig is a daily working window.
type ScheduleConfig struct {
	Start string `yaml:"start"` // "08:00"
	End   string `yaml:"end"`   // "18:00"
}

// BarberConfig describes one barber in catalog.yaml.
type BarberConfig struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Schedule *ScheduleConfig `yaml:"schedule,omitempty"`
	DaysOff  []string        `yaml:"days_off,omitempty"` // weekday names
}

// ServiceConfig describes one catalog service.
type ServiceConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Price           int64  `yaml:"price"`
}

// CatalogDefaults holds settings applied to barbers without explicit ones.
type CatalogDefaults struct {
	Schedule *ScheduleConfig `yaml:"schedule"`
	DaysOff  []string        `yaml:"days_off"`
}

// Catalog is the root configuration for catalog.yaml.
type Catalog struct {
	Barbers  []BarberConfig  `yaml:"barbers"`
	Services []ServiceConfig `yaml:"services"`
	Defaults CatalogDefaults `yaml:"defaults"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadCatalog loads and validates the barber and service catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = "configs/catalog.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat.applyDefaults()
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	return &cat, nil
}

// Validate checks the catalog for errors.
func (c *Catalog) Validate() error {
	if len(c.Barbers) == 0 {
		return fmt.Errorf("no barbers defined")
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("no services defined")
	}

	barberIDs := make(map[string]bool)
	for i, b := range c.Barbers {
		if b.ID == "" {
			return fmt.Errorf("barber[%d]: id is required", i)
		}
		if barberIDs[b.ID] {
			return fmt.Errorf("barber[%d]: duplicate id '%s'", i, b.ID)
		}
		barberIDs[b.ID] = true

		if b.Name == "" {
			return fmt.Errorf("barber[%d]: name is required", i)
		}
		if b.Schedule == nil {
			return fmt.Errorf("barber[%d]: no schedule and no default schedule", i)
		}
		if err := validateSchedule(b.Schedule, fmt.Sprintf("barber[%d].schedule", i)); err != nil {
			return err
		}
		for j, day := range b.DaysOff {
			if _, ok := weekdayNames[strings.ToLower(day)]; !ok {
				return fmt.Errorf("barber[%d].days_off[%d]: unknown weekday '%s'", i, j, day)
			}
		}
	}

	serviceIDs := make(map[string]bool)
	for i, s := range c.Services {
		if s.ID == "" {
			return fmt.Errorf("service[%d]: id is required", i)
		}
		if serviceIDs[s.ID] {
			return fmt.Errorf("service[%d]: duplicate id '%s'", i, s.ID)
		}
		serviceIDs[s.ID] = true

		if s.Name == "" {
			return fmt.Errorf("service[%d]: name is required", i)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("service[%d]: duration_minutes must be positive", i)
		}
		if s.Price < 0 {
			return fmt.Errorf("service[%d]: price cannot be negative", i)
		}
	}

	return nil
}

func validateSchedule(s *ScheduleConfig, prefix string) error {
	if s.Start == "" {
		return fmt.Errorf("%s.start is required", prefix)
	}
	if s.End == "" {
		return fmt.Errorf("%s.end is required", prefix)
	}

	start, err := time.Parse("15:04", s.Start)
	if err != nil {
		return fmt.Errorf("%s.start: invalid format '%s', expected HH:MM", prefix, s.Start)
	}
	end, err := time.Parse("15:04", s.End)
	if err != nil {
		return fmt.Errorf("%s.end: invalid format '%s', expected HH:MM", prefix, s.End)
	}
	if !end.After(start) {
		return fmt.Errorf("%s: end must be after start", prefix)
	}

	return nil
}

func (c *Catalog) applyDefaults() {
	for i := range c.Barbers {
		if c.Barbers[i].Schedule == nil {
			c.Barbers[i].Schedule = c.Defaults.Schedule
		}
		if c.Barbers[i].DaysOff == nil {
			c.Barbers[i].DaysOff = c.Defaults.DaysOff
		}
	}
}

// Directory is the in-memory lookup built from the catalog. It implements
// the directory and catalog interfaces the scheduling core depends on.
type Directory struct {
	barbers  map[string]model.Barber
	services map[string]model.Service
}

// Directory builds the lookup from the validated catalog.
func (c *Catalog) Directory() *Directory {
	d := &Directory{
		barbers:  make(map[string]model.Barber, len(c.Barbers)),
		services: make(map[string]model.Service, len(c.Services)),
	}

	for _, b := range c.Barbers {
		off := make(map[time.Weekday]bool, len(b.DaysOff))
		for _, day := range b.DaysOff {
			off[weekdayNames[strings.ToLower(day)]] = true
		}

		hours := make([]model.WorkingHours, 0, 7)
		for day := time.Sunday; day <= time.Saturday; day++ {
			if off[day] {
				continue
			}
			hours = append(hours, model.WorkingHours{
				Weekday: day,
				Start:   b.Schedule.Start,
				End:     b.Schedule.End,
				Active:  true,
			})
		}
		d.barbers[b.ID] = model.Barber{ID: b.ID, Name: b.Name, Hours: hours}
	}

	for _, s := range c.Services {
		d.services[s.ID] = model.Service{
			ID:              s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
	}

	return d
}

// Barber returns the barber snapshot for an id.
func (d *Directory) Barber(id string) (*model.Barber, bool) {
	b, ok := d.barbers[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

// Service returns the service snapshot for an id.
func (d *Directory) Service(id string) (*model.Service, bool) {
	s, ok := d.services[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

// Barbers returns all barbers sorted by name.
func (d *Directory) Barbers() []model.Barber {
	out := make([]model.Barber, 0, len(d.barbers))
	for _, b := range d.barbers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Services returns all services sorted by name.
func (d *Directory) Services() []model.Service {
	out := make([]model.Service, 0, len(d.services))
	for _, s := range d.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
