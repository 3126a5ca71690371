package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	m, err := Parse([]byte(`
groups:
  - dir: guides/
  - dir: ops
    children: [ops/deploy, ops/backup]
  - dir: "."
`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Dir: "guides"},
		{Dir: "ops", Children: []string{"ops/deploy", "ops/backup"}},
		{Dir: "."},
	}, m.Groups)
}

func TestParse_JSON(t *testing.T) {
	m, err := Parse([]byte(`{"groups":[{"dir":"api","children":["api/auth"]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Dir: "api", Children: []string{"api/auth"}}}, m.Groups)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("groups: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte("groups:\n  - children: [a]\n"))
	assert.ErrorContains(t, err, "has no dir")

	_, err = Parse([]byte("other: 1\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseSidebars(t *testing.T) {
	src := `
const sidebars = {
  docs: [
    'intro',
    { type: 'autogenerated', dirName: 'business-planning' },
    {
      type: 'category',
      label: 'Infra',
      items: [{type: "autogenerated", dirName: "infrastructure/cloud"}],
    },
    { type: 'autogenerated', dirName: '.' },
  ],
};
export default sidebars;
`
	m, err := ParseSidebars([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Dir: "business-planning"},
		{Dir: "infrastructure/cloud"},
		{Dir: "."},
	}, m.Groups)
}

func TestParseSidebars_NoDirectories(t *testing.T) {
	_, err := ParseSidebars([]byte("module.exports = { docs: ['intro'] };"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	js := filepath.Join(dir, "sidebars.js")
	require.NoError(t, os.WriteFile(js, []byte(`{dirName: 'a'}`), 0644))
	yml := filepath.Join(dir, "docgraph.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("groups:\n  - dir: b\n"), 0644))

	m, err := Load(js)
	require.NoError(t, err)
	assert.Equal(t, "a", m.Groups[0].Dir)

	m, err = Load(yml)
	require.NoError(t, err)
	assert.Equal(t, "b", m.Groups[0].Dir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	site := t.TempDir()
	docs := filepath.Join(site, "docs")
	require.NoError(t, os.MkdirAll(docs, 0755))

	assert.Equal(t, "", Discover(docs, site))

	require.NoError(t, os.WriteFile(filepath.Join(site, "sidebars.js"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(site, "sidebars.js"), Discover(docs, site))

	require.NoError(t, os.WriteFile(filepath.Join(site, "sidebars.ts"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(site, "sidebars.ts"), Discover(docs, site))

	require.NoError(t, os.WriteFile(filepath.Join(docs, "docgraph.yaml"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(docs, "docgraph.yaml"), Discover(docs, site))
}
