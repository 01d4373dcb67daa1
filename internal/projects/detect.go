package projects

import (
	"os"
	"path/filepath"
	"strings"
)

// Detect guesses the project type of root from marker files at its top level.
// Unreadable or unrecognised directories are generic.
func Detect(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Generic
	}

	has := make(map[string]bool, len(entries))
	for _, e := range entries {
		has[e.Name()] = true
	}
	hasAny := func(names ...string) bool {
		for _, n := range names {
			if has[n] {
				return true
			}
		}
		return false
	}

	switch {
	case has["composer.json"]:
		return "laravel"
	case hasAny("next.config.js", "next.config.mjs", "next.config.ts"):
		return "nextjs"
	case has["package.json"] && mentionsReact(filepath.Join(root, "package.json")):
		return "reactjs"
	case hasAny("package.json", "npm-shrinkwrap.json"):
		return "nodejs"
	case hasAny("pyproject.toml", "requirements.txt", "setup.py"):
		return "python"
	case hasAny("pom.xml", "build.gradle", "build.gradle.kts"):
		return "java"
	case has["go.mod"]:
		return "go"
	default:
		return Generic
	}
}

func mentionsReact(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "react")
}
