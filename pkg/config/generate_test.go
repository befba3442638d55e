package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()

	// Section headers survive uncommented
	assert.Contains(t, content, "[backups]")
	assert.Contains(t, content, "[discover]")

	// Assignments are commented out
	assert.Contains(t, content, `# keep = 10`)
	assert.Contains(t, content, `# file = "manifest.yaml"`)

	// No live assignments remain
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			continue
		}
		t.Errorf("unexpected live config line: %q", line)
	}
}
