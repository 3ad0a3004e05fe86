package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSelectorYAMLForms(t *testing.T) {
	var got []Selector
	err := yaml.Unmarshal([]byte(`
- "button[type=submit]"
- css: button
  text: Claim
`), &got)
	require.NoError(t, err)
	assert.Equal(t, []Selector{
		{CSS: "button[type=submit]"},
		{CSS: "button", Text: "Claim"},
	}, got)
}

func TestSelectorYAMLRejectsMissingCSS(t *testing.T) {
	var got []Selector
	err := yaml.Unmarshal([]byte(`- text: Claim`), &got)
	assert.Error(t, err)
}

func TestSelectorMarshalKeepsPlainCSSShort(t *testing.T) {
	in := []Selector{{CSS: "form input"}, {CSS: "button", Text: "Get"}}
	out, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- form input\n")
	assert.Contains(t, string(out), "text: Get")

	var back []Selector
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, in, back)
}

func TestSelectorTextPattern(t *testing.T) {
	assert.Equal(t, "/Submit/i", Selector{CSS: "button", Text: "Submit"}.textPattern())
	assert.Equal(t, `/Get \(free\)/i`, Selector{CSS: "button", Text: "Get (free)"}.textPattern())
	assert.Equal(t, `/Send 1\/2/i`, Selector{CSS: "button", Text: "Send 1/2"}.textPattern())
	assert.Equal(t, `/a\/\/b/i`, Selector{CSS: "a", Text: "a//b"}.textPattern())
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "form button", Selector{CSS: "form button"}.String())
	assert.Equal(t, `button ~ "Claim"`, Selector{CSS: "button", Text: "Claim"}.String())
}
