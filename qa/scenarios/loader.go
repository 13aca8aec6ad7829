// Package scenarios replays scripted shadow traffic against a fully wired
// device engine with fake hardware and checks the observable outcome.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Unsynced as a step time marks the device clock unavailable.
const Unsynced = "unsynced"

type Step struct {
	// At is an RFC3339 UTC instant or Unsynced. Empty keeps the previous time.
	At string `yaml:"at,omitempty"`
	// Delta is a raw delta topic payload.
	Delta string `yaml:"delta,omitempty"`
	// Command is a raw command topic payload.
	Command string `yaml:"command,omitempty"`
	// Ticks is the number of loop iterations run after delivery, at least one.
	Ticks int `yaml:"ticks,omitempty"`
}

type ScheduleDef struct {
	Hour          int  `yaml:"hour"`
	Minute        int  `yaml:"minute"`
	BuzzerEnabled bool `yaml:"buzzer_enabled"`
}

type Expected struct {
	Dispensed  []string       `yaml:"dispensed"`
	Duplicates int            `yaml:"duplicates"`
	Alarms     int            `yaml:"alarms"`
	Reports    map[string]int `yaml:"reports"`
	Schedule   *ScheduleDef   `yaml:"schedule,omitempty"`
}

type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Steps       []Step   `yaml:"steps"`
	Expected    Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	for i, st := range sc.Steps {
		if _, _, err := st.instant(); err != nil {
			return nil, fmt.Errorf("%s step %d: %w", path, i, err)
		}
	}
	return &sc, nil
}

// instant parses At. set is false when the step keeps the previous time.
func (s Step) instant() (t time.Time, set bool, err error) {
	switch s.At {
	case "":
		return time.Time{}, false, nil
	case Unsynced:
		return time.Time{}, true, nil
	}
	t, err = time.Parse(time.RFC3339, s.At)
	return t.UTC(), true, err
}

func (s Step) ticks() int {
	if s.Ticks < 1 {
		return 1
	}
	return s.Ticks
}
