// Package fixtures provides recorded hand landmark fixtures for tests.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

type handFile struct {
	Points     []detector.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

// LoadRaw returns the JSON of a hand fixture by name, without extension.
func LoadRaw(name string) ([]byte, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", name, err)
	}
	return data, nil
}

// LoadHand loads and validates a hand fixture by name, without extension.
func LoadHand(name string) (detector.HandLandmarks, error) {
	data, err := LoadRaw(name)
	if err != nil {
		return detector.HandLandmarks{}, err
	}

	var hf handFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("decode hand %s: %w", name, err)
	}
	return detector.FromPoints(hf.Points, hf.Handedness, hf.Score)
}

// Names lists the available hand fixtures.
func Names() ([]string, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	return names, nil
}
