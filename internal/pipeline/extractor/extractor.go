// Package extractor holds the source drivers and the config dispatch that
// selects one by its type tag.
package extractor

import (
	"fmt"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

// New builds the driver selected by the config's type tag.
func New(cfg domain.DriverConfig) (pipeline.Extractor, error) {
	switch cfg.Type() {
	case "csv":
		path, err := cfg.String("path")
		if err != nil {
			return nil, err
		}
		return &CSV{Path: path}, nil
	case "api":
		url, err := cfg.String("url")
		if err != nil {
			return nil, err
		}
		return NewAPI(url), nil
	case "parquet":
		path, err := cfg.String("path")
		if err != nil {
			return nil, err
		}
		return &Parquet{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported extractor type %q", domain.ErrConfigInvalid, cfg.Type())
	}
}
