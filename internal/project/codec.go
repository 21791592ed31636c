package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedSchema is returned for projects written by a newer version.
var ErrUnsupportedSchema = errors.New("unsupported project schema version")

// segmentFields mirrors ZoomSegment for decoding. Older files name the
// initial rectangle targetRect.
type segmentFields ZoomSegment

// UnmarshalJSON fills defaults for fields older files omit.
func (s *ZoomSegment) UnmarshalJSON(data []byte) error {
	var aux struct {
		segmentFields
		TargetRect *NormalizedRect `json:"targetRect"`
	}
	aux.InitialRect = FullFrame()
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = ZoomSegment(aux.segmentFields)
	if aux.TargetRect != nil && !hasKey(data, "initialRect") {
		s.InitialRect = *aux.TargetRect
	}
	return nil
}

func hasKey(data []byte, key string) bool {
	return json.Get(data, key).LastError() == nil
}

// UnmarshalYAML fills defaults for fields older files omit.
func (s *ZoomSegment) UnmarshalYAML(node *yaml.Node) error {
	aux := segmentFields{InitialRect: FullFrame()}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*s = ZoomSegment(aux)
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Marshal encodes p as JSON or YAML depending on the path extension.
func Marshal(p *Project, path string) ([]byte, error) {
	if isJSON(path) {
		return json.MarshalIndent(p, "", "  ")
	}
	return yaml.Marshal(p)
}

// Unmarshal decodes a project and rejects newer schemas.
func Unmarshal(data []byte, path string) (*Project, error) {
	var p Project
	var err error
	if isJSON(path) {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if p.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, p.SchemaVersion)
	}
	return &p, nil
}

// WriteProject stores p at path; .json paths are written as JSON, anything
// else as YAML.
func WriteProject(p *Project, path string) error {
	data, err := Marshal(p, path)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadProject loads a project written by WriteProject.
func ReadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, path)
}

type segmentsFile struct {
	Segments []ZoomSegment `yaml:"segments"`
}

// WriteSegments stores bare segments as YAML.
func WriteSegments(segments []ZoomSegment, path string) error {
	data, err := yaml.Marshal(segmentsFile{Segments: segments})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSegments loads segments written by WriteSegments.
func ReadSegments(path string) ([]ZoomSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f segmentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Segments, nil
}
