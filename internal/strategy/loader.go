package strategy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a custom strategy from a YAML file. Unknown fields fail
// decoding so a typo'd weight name cannot silently drop weight.
func LoadFile(path string) (Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Strategy{}, fmt.Errorf("read strategy file: %w", err)
	}

	var s Strategy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Strategy{}, fmt.Errorf("parse strategy file: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Strategy{}, err
	}

	return s, nil
}

// Hash returns a deterministic identity for a strategy's full weight vector.
// Preset and custom strategies alike hash the same way, so cache keys built
// from it distinguish two custom files that share an ID.
func Hash(s Strategy) string {
	jsonBytes, _ := json.Marshal(struct {
		ID      string     `json:"id"`
		Weights [5]float64 `json:"weights"`
	}{s.ID, s.Weights()})

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:])[:16]
}
