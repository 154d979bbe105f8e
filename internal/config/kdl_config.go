package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// FileName is the project config file LoadKDL looks for.
const FileName = ".symindex.kdl"

// LoadKDL loads FileName from projectRoot. It returns (nil, nil) when
// the file doesn't exist — callers fall back to Default.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", FileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(projectRoot, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)

	for i := range cfg.Roots {
		if !filepath.IsAbs(cfg.Roots[i].Dir) {
			cfg.Roots[i].Dir = filepath.Clean(filepath.Join(projectRoot, cfg.Roots[i].Dir))
		}
	}
	for i := range cfg.Libraries {
		if !filepath.IsAbs(cfg.Libraries[i].Dir) {
			cfg.Libraries[i].Dir = filepath.Clean(filepath.Join(projectRoot, cfg.Libraries[i].Dir))
		}
	}

	return cfg, nil
}

// parseKDL walks a .symindex.kdl document's node tree. Recognized
// top-level nodes: project, index, performance, suggest, root (one per
// local source root), library (one per library source root), include,
// exclude.
func parseKDL(content string) (*Config, error) {
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	cfg := Default(cwd)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", FileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			parseIndexNode(cfg, n)
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_goroutines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxGoroutines = v
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.DebounceMs = v
					}
				}
			}
		case "suggest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Suggest.Enabled = b
					}
				case "threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Suggest.Threshold = v
					}
				}
			}
		case "root":
			if dir, ok := firstStringArg(n); ok {
				name := filepath.Base(dir)
				for _, cn := range n.Children {
					assignSimpleString(cn, "name", func(v string) { name = v })
				}
				cfg.Roots = append(cfg.Roots, LocalRoot{Dir: dir, Name: name})
			}
		case "library":
			if dir, ok := firstStringArg(n); ok {
				name := filepath.Base(dir)
				for _, cn := range n.Children {
					assignSimpleString(cn, "name", func(v string) { name = v })
				}
				cfg.Libraries = append(cfg.Libraries, LibraryRoot{Dir: dir, Name: name})
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Index.MaxFileSize = sz
				}
			} else if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
		case "max_file_count":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileCount = v
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.FollowSymlinks = b
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.RespectGitignore = b
			}
		case "watch_mode":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.WatchMode = b
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.WatchDebounceMs = v
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// collectStringArgs reads either inline arguments (exclude "a" "b") or
// block-style children (exclude { "a"; "b" }) — KDL allows both, and a
// hand-edited project config will use whichever reads better.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid size %q: %w", s, err)
	}
	return num * multiplier, nil
}
