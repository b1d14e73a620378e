package factory

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// ScenarioInfo describes an embedded demo document.
type ScenarioInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrUnknownScenario is returned for a scenario id with no embedded document.
type ErrUnknownScenario struct {
	ID string
}

func (e *ErrUnknownScenario) Error() string {
	return fmt.Sprintf("unknown scenario: %s", e.ID)
}

// Scenarios lists the embedded demo documents sorted by id.
func Scenarios() ([]ScenarioInfo, error) {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}
	out := make([]ScenarioInfo, 0, len(entries))
	for _, e := range entries {
		doc, err := readScenario(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, ScenarioInfo{ID: doc.ID, Name: doc.Name, Description: doc.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Scenario returns the embedded document with the given id.
func Scenario(id string) (*Document, error) {
	doc, err := readScenario(id + ".yaml")
	if err != nil {
		return nil, &ErrUnknownScenario{ID: id}
	}
	return doc, nil
}

// LoadScenario loads an embedded document into w. The caller is expected to
// have emptied the store first.
func LoadScenario(ctx context.Context, w Writer, id string) (Summary, error) {
	doc, err := Scenario(id)
	if err != nil {
		return Summary{}, err
	}
	return Load(ctx, w, doc)
}

func readScenario(name string) (*Document, error) {
	data, err := scenarioFS.ReadFile(path.Join("scenarios", name))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
