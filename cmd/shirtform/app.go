package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vango-dev/shirtform/internal/config"
	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
)

// app is the loaded configuration with its schema and catalog.
type app struct {
	cfg     *config.Config
	schema  *form.Schema
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// loadApp loads configuration from dir and the schema and catalog it names.
// Logs go to logOut.
func loadApp(dir string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		schema:  form.DefaultSchema(),
		catalog: catalog.Default(),
		logger:  cfg.Log.Logger(logOut),
	}

	if cfg.Schema != "" {
		path := resolve(dir, cfg.Schema)
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("E200").WithFile(path).Wrap(err).
				WithSuggestion("Check the schema path in " + config.ConfigFileName + " or SHIRTFORM_SCHEMA")
		}
		s, err := form.LoadSchemaFile(path)
		if err != nil {
			return nil, fileError("E201", path, err)
		}
		a.schema = s
	}

	if cfg.Catalog != "" {
		path := resolve(dir, cfg.Catalog)
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("E202").WithFile(path).Wrap(err).
				WithSuggestion("Check the catalog path in " + config.ConfigFileName + " or SHIRTFORM_CATALOG")
		}
		c, err := catalog.LoadFile(path)
		if err != nil {
			return nil, fileError("E203", path, err)
		}
		a.catalog = c
	}

	if err := form.CheckCatalog(a.schema, a.catalog); err != nil {
		return nil, errors.New("E204").Wrap(err).
			WithSuggestion("Make the schema's oneOf values match the catalog ids and size codes")
	}
	return a, nil
}

// fileError points a parse error at its line when the parser reported one.
func fileError(code, path string, err error) *errors.Error {
	e := errors.New(code).Wrap(err)
	if line := errors.LineOf(err); line > 0 {
		return e.WithLocation(path, line, 0)
	}
	return e.WithFile(path)
}

// resolve makes path relative to dir unless it is absolute.
func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
