// Package factory instantiates pluggable modules from configuration. A module
// is named by a type string and carries a raw settings map; each factory
// decodes the map into its own struct with Decode.
//
//	stores := factory.NewRegistry[journal.Store]()
//	_ = stores.Register("sqlite", func(conf map[string]any) (journal.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return journal.NewSQLiteStore(c.Path)
//	})
//	s, err := stores.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "pillbox.db"}})
package factory
