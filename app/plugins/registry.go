// Package plugins builds the pluggable journal backends from configuration.
package plugins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/pillbox/core/factory"
	"github.com/kilianp07/pillbox/core/journal"
)

var journalStores = factory.NewRegistry[journal.Store]()

// RegisterJournalStore adds a journal backend factory identified by name.
func RegisterJournalStore(name string, f factory.Factory[journal.Store]) error {
	return journalStores.Register(name, f)
}

// NewJournalStore creates the configured journal backend. An empty type
// disables the journal.
func NewJournalStore(cfg factory.ModuleConfig) (journal.Store, error) {
	if cfg.Type == "" {
		return journal.NopStore{}, nil
	}
	s, err := journalStores.Create(cfg)
	if errors.Is(err, factory.ErrUnknownModule) {
		return nil, fmt.Errorf("%w (have %s)", err, strings.Join(JournalTypes(), ", "))
	}
	return s, err
}

// JournalTypes lists the registered journal backends.
func JournalTypes() []string {
	return journalStores.Types()
}
