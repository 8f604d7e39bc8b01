package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speckit/internal/ir"
)

// testRoot builds a project tree with a python scaffold template, compose
// snippets and empty managed regions in the shared compose files.
func testRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("templates/services/python/Dockerfile",
		"FROM python:3.12-slim\nCOPY services/__SERVICE_NAME__ /app\n")
	write("templates/services/python/src/main.py",
		"# entrypoint for __SERVICE_NAME__\n")

	write("templates/compose/python.base.yml",
		"__SERVICE_NAME__:\n  image: service-template-__SERVICE_NAME__:latest\n  networks:\n    - internal\n")

	write("infra/compose.base.yml",
		"services:\n  "+BeginMarker+"\n  "+EndMarker+"\n")
	write("infra/compose.dev.yml",
		"services:\n  "+BeginMarker+"\n  "+EndMarker+"\n")

	return root
}

func billingRegistry() *ir.Registry {
	return &ir.Registry{
		Version: 2,
		Services: []ir.ServiceRecord{
			{Name: "billing", Type: "python", Description: "Billing service"},
		},
	}
}

func findingKinds(report *Report) []FindingKind {
	out := make([]FindingKind, len(report.Findings))
	for i, f := range report.Findings {
		out[i] = f.Kind
	}
	return out
}

func TestCheckReportsMissingArtifacts(t *testing.T) {
	root := testRoot(t)

	report, err := Check(root, billingRegistry())
	require.NoError(t, err)

	assert.False(t, report.Clean())
	kinds := findingKinds(report)
	assert.Contains(t, kinds, FindingMissingDirectory)
	// empty managed regions diverge from the rendered block
	assert.Contains(t, kinds, FindingStaleMarker)
}

func TestCreateMaterializesEverything(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	report, err := Create(root, reg)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Created)

	// scaffold tree with slug substituted
	dockerfile, err := os.ReadFile(filepath.Join(root, "services/billing/Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "services/billing /app")
	assert.NotContains(t, string(dockerfile), Placeholder)

	entry, err := os.ReadFile(filepath.Join(root, "services/billing/src/main.py"))
	require.NoError(t, err)
	assert.Contains(t, string(entry), "billing")

	// doc stubs
	readme, err := os.ReadFile(filepath.Join(root, "services/billing/README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# Billing")
	assert.Contains(t, string(readme), "Billing service")

	agents, err := os.ReadFile(filepath.Join(root, "services/billing/AGENTS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(agents), "billing")

	// per-service compose artifact, base flavor only (no dev snippet)
	base, err := os.ReadFile(filepath.Join(root, "infra/compose.services/billing/base.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(base), "billing:")
	_, err = os.Stat(filepath.Join(root, "infra/compose.services/billing/dev.yml"))
	assert.True(t, os.IsNotExist(err))

	// managed region rewritten
	compose, err := os.ReadFile(filepath.Join(root, "infra/compose.base.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(compose), "  billing:")
	assert.Contains(t, string(compose), "    image: service-template-billing:latest")
	assert.Contains(t, string(compose), BeginMarker)
	assert.Contains(t, string(compose), EndMarker)

	// dev has no snippets: placeholder comment
	dev, err := os.ReadFile(filepath.Join(root, "infra/compose.dev.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(dev), "# (no managed services)")
}

// Check must converge to a clean report after Create, and a second Create
// must be a no-op.
func TestCheckCreateConvergence(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	_, err := Create(root, reg)
	require.NoError(t, err)

	report, err := Check(root, reg)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "findings after create: %v", report.Findings)

	second, err := Create(root, reg)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
}

// A registry record with no directory yields exactly one finding; the
// missing required files inside it are not reported separately.
func TestCheckMissingDirectoryIsSingleFinding(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	_, err := Create(root, reg)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "services/billing")))

	report, err := Check(root, reg)
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, FindingMissingDirectory, report.Findings[0].Kind)
	assert.Equal(t, "billing", report.Findings[0].Service)

	// create-missing restores it; check is clean again
	_, err = Create(root, reg)
	require.NoError(t, err)
	report, err = Check(root, reg)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

// Pre-existing files are never rewritten: bytes and modification time
// survive a Create untouched.
func TestCreateLeavesExistingFilesAlone(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	readme := filepath.Join(root, "services/billing/README.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(readme), 0o755))
	require.NoError(t, os.WriteFile(readme, []byte("# My own docs\n"), 0o644))
	before, err := os.Stat(readme)
	require.NoError(t, err)

	_, err = Create(root, reg)
	require.NoError(t, err)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "# My own docs\n", string(data))

	after, err := os.Stat(readme)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestCreateRewritesStaleMarkerRegion(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	_, err := Create(root, reg)
	require.NoError(t, err)

	// corrupt the managed region but keep the sentinels
	composePath := filepath.Join(root, "infra/compose.base.yml")
	content, err := os.ReadFile(composePath)
	require.NoError(t, err)
	corrupted := strings.Replace(string(content), "  billing:", "  hijacked:", 1)
	require.NoError(t, os.WriteFile(composePath, []byte(corrupted), 0o644))

	report, err := Check(root, reg)
	require.NoError(t, err)
	assert.Contains(t, findingKinds(report), FindingStaleMarker)

	_, err = Create(root, reg)
	require.NoError(t, err)

	restored, err := os.ReadFile(composePath)
	require.NoError(t, err)
	assert.Contains(t, string(restored), "  billing:")
	assert.NotContains(t, string(restored), "hijacked")
}

// Content outside the sentinels survives marker rewrites byte-for-byte.
func TestCreatePreservesUnmanagedComposeContent(t *testing.T) {
	root := testRoot(t)
	reg := billingRegistry()

	composePath := filepath.Join(root, "infra/compose.base.yml")
	content := "networks:\n  internal: {}\nservices:\n  custom:\n    image: mine\n  " +
		BeginMarker + "\n  " + EndMarker + "\nvolumes:\n  data: {}\n"
	require.NoError(t, os.WriteFile(composePath, []byte(content), 0o644))

	_, err := Create(root, reg)
	require.NoError(t, err)

	updated, err := os.ReadFile(composePath)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "  custom:\n    image: mine")
	assert.Contains(t, string(updated), "volumes:\n  data: {}")
	assert.Contains(t, string(updated), "  billing:")
}

func TestCheckUnknownTypeFinding(t *testing.T) {
	root := testRoot(t)
	reg := &ir.Registry{
		Version: 2,
		Services: []ir.ServiceRecord{
			{Name: "edge", Type: "rust", Description: "No template for this"},
		},
	}

	report, err := Check(root, reg)
	require.NoError(t, err)
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, FindingUnknownType, report.Findings[0].Kind)
	assert.Contains(t, report.Findings[0].Detail, "rust")
}

// An unknown type aborts Create before anything is materialized, even for
// records that do have templates.
func TestCreateUnknownTypeAborts(t *testing.T) {
	root := testRoot(t)
	reg := &ir.Registry{
		Version: 2,
		Services: []ir.ServiceRecord{
			{Name: "billing", Type: "python", Description: "ok"},
			{Name: "edge", Type: "rust", Description: "no template"},
		},
	}

	_, err := Create(root, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rust")

	_, statErr := os.Stat(filepath.Join(root, "services/billing"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be created on abort")
}

func TestCheckMissingMarkerFileIsHardError(t *testing.T) {
	root := testRoot(t)
	require.NoError(t, os.Remove(filepath.Join(root, "infra/compose.dev.yml")))

	_, err := Check(root, billingRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compose.dev.yml")
}

func TestFindingsFollowRegistryOrder(t *testing.T) {
	root := testRoot(t)
	reg := &ir.Registry{
		Version: 2,
		Services: []ir.ServiceRecord{
			{Name: "zeta", Type: "python", Description: "z"},
			{Name: "alpha", Type: "python", Description: "a"},
		},
	}

	report, err := Check(root, reg)
	require.NoError(t, err)

	var dirs []string
	for _, f := range report.Findings {
		if f.Kind == FindingMissingDirectory {
			dirs = append(dirs, f.Service)
		}
	}
	assert.Equal(t, []string{"zeta", "alpha"}, dirs)
}
