package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissingDataset is returned when a dataset directory lacks clients.json.
var ErrMissingDataset = errors.New("dataset not found")

// Dataset file names, one per collection.
const (
	FileClients        = "clients.json"
	FileManualInputs   = "manual_inputs.json"
	FileCalculated     = "calculated.json"
	FileBehavior       = "behavior.json"
	FileTrends         = "trends.json"
	FileRiskIndicators = "risk_indicators.json"
)

// WriteDataset serializes the dataset into one JSON file per collection under dir.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{FileClients, dataset.Clients},
		{FileManualInputs, dataset.ManualInputs},
		{FileCalculated, dataset.Calculated},
		{FileBehavior, dataset.Behavior},
		{FileTrends, dataset.Trends},
		{FileRiskIndicators, dataset.RiskIndicators},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// ReadDataset loads a dataset written by WriteDataset. Only clients.json is
// required; missing record files yield empty slices.
func ReadDataset(dir string) (Dataset, error) {
	var ds Dataset
	clientsPath := filepath.Join(dir, FileClients)
	if _, err := os.Stat(clientsPath); err != nil {
		return Dataset{}, fmt.Errorf("%w: %s", ErrMissingDataset, clientsPath)
	}

	files := []struct {
		name   string
		target any
	}{
		{FileClients, &ds.Clients},
		{FileManualInputs, &ds.ManualInputs},
		{FileCalculated, &ds.Calculated},
		{FileBehavior, &ds.Behavior},
		{FileTrends, &ds.Trends},
		{FileRiskIndicators, &ds.RiskIndicators},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := readJSON(path, f.target); err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
