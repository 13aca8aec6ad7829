package plugins

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/pillbox/core/factory"
	"github.com/kilianp07/pillbox/core/journal"
	"github.com/kilianp07/pillbox/infra/archive"
)

type fileConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c fileConf) rotation() journal.RotationConfig {
	return journal.RotationConfig{MaxSizeMB: c.MaxSizeMB, MaxBackups: c.MaxBackups, MaxAgeDays: c.MaxAgeDays}
}

func init() {
	_ = RegisterJournalStore("none", func(map[string]any) (journal.Store, error) {
		return journal.NopStore{}, nil
	})
	_ = RegisterJournalStore("jsonl", func(conf map[string]any) (journal.Store, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "dispenses.jsonl"
		}
		return journal.NewJSONLStore(c.Path, c.rotation())
	})
	_ = RegisterJournalStore("sqlite", func(conf map[string]any) (journal.Store, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("sqlite journal: path is required")
		}
		return journal.NewSQLiteStore(c.Path)
	})
	_ = RegisterJournalStore("s3", func(conf map[string]any) (journal.Store, error) {
		var c archive.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		s, err := archive.NewMinioStore(c)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	})
}
