package flowcore

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalog, yamlFlow, yamlStep and yamlLink are the declarative YAML
// shapes a catalog is authored in. This mirrors how the original system
// authors flows as data rather than code; teleflow itself has no
// equivalent loader, so this is drawn from the rest of the retrieved pack
// (roach88-nysm, ilkoid-PonchoAiFramework), both of which decode
// declarative specs with gopkg.in/yaml.v3.
type yamlCatalog struct {
	Flows []yamlFlow `yaml:"flows"`
}

type yamlFlow struct {
	ID    string     `yaml:"id"`
	Steps []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	// UserMessageStep
	Intent   string   `yaml:"intent,omitempty"`
	Entities []string `yaml:"entities,omitempty"`

	// QuestionStep
	Question     string `yaml:"question,omitempty"`
	Ephemeral    bool   `yaml:"ephemeral,omitempty"`
	SkipIfFilled bool   `yaml:"skip_if_filled,omitempty"`

	// ActionStep
	Action string `yaml:"action,omitempty"`

	// LinkStep
	Link string `yaml:"link,omitempty"`

	Next []yamlLink `yaml:"next,omitempty"`
}

type yamlLink struct {
	Target string `yaml:"target,omitempty"`
	If     string `yaml:"if,omitempty"`
	Else   bool   `yaml:"else,omitempty"`
}

// LoadCatalogFile reads and decodes a YAML flow catalog from path.
func LoadCatalogFile(path string) (*FlowsList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newFlowError(KindConfiguration, "read catalog %s: %v", path, err)
	}
	return LoadCatalog(data)
}

// LoadCatalog decodes a YAML flow catalog into a FlowsList.
func LoadCatalog(data []byte) (*FlowsList, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newFlowError(KindConfiguration, "parse catalog: %v", err)
	}

	flows := make([]*Flow, 0, len(doc.Flows))
	for _, yf := range doc.Flows {
		steps := make([]FlowStep, 0, len(yf.Steps))
		for _, ys := range yf.Steps {
			step, err := decodeStep(ys)
			if err != nil {
				return nil, newFlowError(KindConfiguration, "flow %q: %v", yf.ID, err)
			}
			steps = append(steps, step)
		}
		flows = append(flows, NewFlow(yf.ID, steps))
	}

	return NewFlowsList(flows), nil
}

func decodeStep(ys yamlStep) (FlowStep, error) {
	links := decodeLinks(ys.Next)

	switch ys.Type {
	case "user_message":
		return NewUserMessageStep(ys.ID, ys.Intent, ys.Entities, links), nil
	case "question":
		return NewQuestionStep(ys.ID, ys.Question, ys.Ephemeral, ys.SkipIfFilled, links), nil
	case "action":
		return NewActionStep(ys.ID, ys.Action, links), nil
	case "link":
		return NewLinkStep(ys.ID, ys.Link, links), nil
	default:
		return nil, newFlowError(KindConfiguration, "step %q: unknown step type %q", ys.ID, ys.Type)
	}
}

func decodeLinks(yls []yamlLink) FlowLinks {
	links := make(FlowLinks, 0, len(yls))
	for _, yl := range yls {
		switch {
		case yl.Else:
			links = append(links, ElseFlowLink{TargetID: yl.Target})
		case yl.If != "":
			links = append(links, IfFlowLink{Condition: yl.If, TargetID: yl.Target})
		default:
			links = append(links, StaticFlowLink{TargetID: yl.Target})
		}
	}
	return links
}
