package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/store"
)

// artifactStore builds the tenant artifact store from config.
func artifactStore() *artifacts.Store {
	return artifacts.NewStore(cfg.Paths.DataRoot, cfg.Paths.ModelRoot)
}

// openStore opens and migrates the configured user database.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
