package agent

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type templateMeta struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Provider    string   `yaml:"provider,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
}

func parseTemplate(content string) (meta templateMeta, body string, hasHeader bool, err error) {
	header, body, hasHeader := splitFrontMatter(content)
	if !hasHeader {
		return meta, content, false, nil
	}

	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, content, true, err
	}
	return meta, strings.TrimLeft(body, "\n"), true, nil
}

func splitFrontMatter(content string) (header string, body string, ok bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", content, false
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return "", content, false
	}

	header = rest[:end]
	body = rest[end+len("\n---\n"):]
	return header, body, true
}
