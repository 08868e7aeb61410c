package tree

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Language tags understood by the editing surface
const (
	LanguagePlainText = "plaintext"
	LanguageBinary    = "binary"
)

var languageByExt = map[string]string{
	".ts":       "typescript",
	".tsx":      "typescript",
	".mts":      "typescript",
	".js":       "javascript",
	".jsx":      "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".json":     "json",
	".md":       "markdown",
	".markdown": "markdown",
	".html":     "html",
	".htm":      "html",
	".css":      "css",
	".scss":     "scss",
	".less":     "less",
	".py":       "python",
	".go":       "go",
	".rs":       "rust",
	".java":     "java",
	".kt":       "kotlin",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".cc":       "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".rb":       "ruby",
	".php":      "php",
	".swift":    "swift",
	".sh":       "shell",
	".bash":     "shell",
	".zsh":      "shell",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".xml":      "xml",
	".svg":      "xml",
	".sql":      "sql",
	".graphql":  "graphql",
	".vue":      "vue",
	".svelte":   "svelte",
	".txt":      LanguagePlainText,
}

var languageByName = map[string]string{
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
}

// languageByMIME maps sniffed content types to language tags, most specific first
var languageByMIME = []struct {
	mime     string
	language string
}{
	{"application/json", "json"},
	{"text/html", "html"},
	{"image/svg+xml", "xml"},
	{"text/xml", "xml"},
	{"text/javascript", "javascript"},
	{"text/x-python", "python"},
	{"text/x-shellscript", "shell"},
	{"text/x-php", "php"},
	{"text/x-lua", "lua"},
	{"text/x-perl", "perl"},
	{"text/x-tcl", "tcl"},
	{"text/rtf", LanguagePlainText},
	{"text/plain", LanguagePlainText},
}

// DetectLanguage picks a language tag for a file. The extension wins; files
// without a known extension are classified by sniffing their content.
func DetectLanguage(name, content string) string {
	if lang, ok := languageByExt[strings.ToLower(path.Ext(name))]; ok {
		return lang
	}
	if lang, ok := languageByName[strings.ToLower(name)]; ok {
		return lang
	}
	if content == "" {
		return LanguagePlainText
	}

	detected := mimetype.Detect([]byte(content))
	for _, m := range languageByMIME {
		if detected.Is(m.mime) {
			return m.language
		}
	}
	for p := detected.Parent(); p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return LanguagePlainText
		}
	}
	return LanguageBinary
}
