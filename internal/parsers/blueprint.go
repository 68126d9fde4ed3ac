// Package parsers loads Box 3 blueprint documents from JSON files.
//
// The upstream document store is key-value shaped, so dossier snapshots
// arrive as a single JSON object per dossier rather than tabular data. The
// parser validates structure and id uniqueness before handing the
// collection to the deduplication engine.
package parsers

import (
	"encoding/json"
	"io"
	"os"

	"box3-dedup-service/internal/models"
	"box3-dedup-service/pkg/errors"
	"box3-dedup-service/pkg/logger"
)

// LoadBlueprint reads and validates a blueprint JSON file
func LoadBlueprint(path string) (*models.Box3Blueprint, error) {
	log := logger.GetGlobalLogger().WithComponent("blueprint_parser")
	log.WithField("path", path).Debug("Loading blueprint file")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err).
				WithSuggestion("Check that the dossier file path is correct")
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err).
			WithSuggestion("Check file permissions")
	}
	defer file.Close()

	bp, err := ParseBlueprint(file)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, err).
			WithSuggestion("Check that the file contains a valid blueprint JSON document")
	}

	log.WithFields(logger.Fields{
		"path":         path,
		"total_assets": bp.TotalAssetCount(),
		"debts":        len(bp.Debts),
	}).Info("Blueprint loaded")

	return bp, nil
}

// ParseBlueprint decodes and validates a blueprint from a reader
func ParseBlueprint(r io.Reader) (*models.Box3Blueprint, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var bp models.Box3Blueprint
	if err := decoder.Decode(&bp); err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			"blueprint JSON is malformed")
	}

	if err := bp.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, errors.CodeInvalidData,
			"blueprint contains invalid asset data")
	}

	return &bp, nil
}

// WriteBlueprint writes a blueprint as indented JSON, used to persist the
// deduplicated replacement collection.
func WriteBlueprint(bp *models.Box3Blueprint, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(bp); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to encode blueprint")
	}
	return nil
}
