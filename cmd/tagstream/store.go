package main

import (
	"fmt"

	"github.com/fwojciec/tagstream"
	tsjson "github.com/fwojciec/tagstream/json"
	"github.com/fwojciec/tagstream/sqlite"
)

// openStore opens the configured conversation store. A sqlite store is
// closed with the app.
func (a *app) openStore() (tagstream.Store, error) {
	path, err := a.cfg.StorePath(a.env.home)
	if err != nil {
		return nil, err
	}
	switch a.cfg.Store.Kind {
	case "sqlite":
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return tsjson.NewStore(path), nil
	}
}
