package browser

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Selector matches elements by CSS and, optionally, by a case-insensitive
// substring of their text content.
type Selector struct {
	CSS  string `yaml:"css"`
	Text string `yaml:"text,omitempty"`
}

type selectorFields struct {
	CSS  string `yaml:"css"`
	Text string `yaml:"text,omitempty"`
}

func (s Selector) String() string {
	if s.Text == "" {
		return s.CSS
	}
	return fmt.Sprintf("%s ~ %q", s.CSS, s.Text)
}

// textPattern renders Text as a JS regex literal for rod's ElementR/HasR.
func (s Selector) textPattern() string {
	return "/" + strings.ReplaceAll(regexp.QuoteMeta(s.Text), "/", `\/`) + "/i"
}

// UnmarshalYAML accepts either a bare CSS string or a {css, text} mapping.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var css string
		if err := node.Decode(&css); err != nil {
			return err
		}
		*s = Selector{CSS: css}
		return nil
	}

	var fields selectorFields
	if err := node.Decode(&fields); err != nil {
		return err
	}
	if fields.CSS == "" {
		return fmt.Errorf("selector at line %d has no css", node.Line)
	}
	*s = Selector(fields)
	return nil
}

func (s Selector) MarshalYAML() (interface{}, error) {
	if s.Text == "" {
		return s.CSS, nil
	}
	return selectorFields(s), nil
}
