// Package godef is a real semdb.Database frontend for a single Go package
// directory. It models the package as one crate with one module: top-level
// funcs/consts/vars/types become that module's declarations, and every
// group of methods sharing a receiver type becomes one synthetic,
// anonymous impl block — mirroring how a Rust `impl Widget { ... }`
// contributes its methods without the impl block itself ever surfacing a
// container name.
package godef

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	symerrors "github.com/fast-ide/symindex/internal/errors"
	"github.com/fast-ide/symindex/internal/semdb"
	"github.com/fast-ide/symindex/internal/types"
)

const crateID types.CrateID = 1
const rootSourceRoot types.SourceRootID = 1
const rootLocal types.LocalModuleID = 0

const queryStr = `
(package_clause (package_identifier) @package.name)
(function_declaration name: (identifier) @function.name) @function
(method_declaration
    receiver: (parameter_list
        (parameter_declaration
            type: [(type_identifier) @method.receiver.type
                   (pointer_type (type_identifier) @method.receiver.type)]))
    name: (field_identifier) @method.name) @method
(type_declaration
    (type_spec name: (type_identifier) @type.name type: (_) @type.value)) @type
(const_declaration (const_spec name: (identifier) @const.name)) @const
(var_declaration (var_spec name: (identifier) @var.name)) @var
(import_spec path: (interpreted_string_literal) @import.path) @import
`

type declInfo struct {
	name    string
	file    types.FileID
	ptr     types.SyntaxPtr
	namePtr types.SyntaxPtr
}

type implRecord struct {
	methods []semdb.AssocItem
}

// Frontend is a semdb.Database (and, for its sole module, a semdb.DefMap
// and semdb.ModuleScope) over one parsed Go package directory.
type Frontend struct {
	dir         string
	packageName string

	files []fileRecord

	decls map[types.DeclID]declInfo
	scope moduleScope

	impls map[types.ImplID]*implRecord

	cancelled atomic.Bool
}

type fileRecord struct {
	path    string
	content []byte
}

type moduleScope struct {
	decls []semdb.ModuleDef
	impls []types.ImplID
}

func (s moduleScope) Declarations() []semdb.ModuleDef    { return s.decls }
func (s moduleScope) Impls() []types.ImplID              { return s.impls }
func (s moduleScope) UnnamedConsts() []types.BodyID      { return nil }
func (s moduleScope) MacroDeclarations() []types.DeclID  { return nil }

// Open parses every *.go file directly inside dir (no subdirectories —
// each Go package directory is its own crate) and builds a Frontend over
// the result.
func Open(dir string) (*Frontend, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, symerrors.NewFileError("readdir", dir, err)
	}

	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	query, _ := tree_sitter.NewQuery(language, queryStr)
	if query == nil {
		return nil, symerrors.NewParseError(0, dir, 0, 0, "", fmt.Errorf("failed to compile go query"))
	}

	f := &Frontend{
		dir:   dir,
		decls: make(map[types.DeclID]declInfo),
		impls: make(map[types.ImplID]*implRecord),
	}

	var nextID uint64
	methodsByReceiver := map[string][]semdb.AssocItem{}
	var implOrder []string

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, symerrors.NewFileError("read", path, err)
		}

		fileID := types.FileID(len(f.files))
		f.files = append(f.files, fileRecord{path: path, content: content})

		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(language); err != nil {
			return nil, symerrors.NewParseError(fileID, path, 0, 0, "", err)
		}
		tree := parser.Parse(content, nil)
		root := tree.RootNode()

		qc := tree_sitter.NewQueryCursor()
		matches := qc.Matches(query, root, content)
		captureNames := query.CaptureNames()

		for {
			match := matches.Next()
			if match == nil {
				break
			}

			named := map[string]tree_sitter.Node{}
			var mainNode tree_sitter.Node
			var mainCapture string
			for _, c := range match.Captures {
				capName := captureNames[c.Index]
				if strings.Contains(capName, ".") {
					named[capName] = c.Node
					continue
				}
				mainNode = c.Node
				mainCapture = capName
			}

			if pkgNode, ok := named["package.name"]; ok && f.packageName == "" {
				f.packageName = string(content[pkgNode.StartByte():pkgNode.EndByte()])
			}

			switch mainCapture {
			case "function":
				nameNode, ok := named["function.name"]
				if !ok {
					continue // func_literal: no name, silently dropped
				}
				id := types.DeclID(atomic.AddUint64(&nextID, 1))
				f.record(id, nameNode, mainNode, fileID, content)
				f.scope.decls = append(f.scope.decls, semdb.ModuleDef{
					Kind: semdb.DefFunction,
					ID:   id,
					Container: semdb.AssocContainer{
						Kind: semdb.ContainerModule, Name: f.packageName, HasName: f.packageName != "",
					},
				})

			case "method":
				nameNode, ok1 := named["method.name"]
				recvNode, ok2 := named["method.receiver.type"]
				if !ok1 || !ok2 {
					continue
				}
				id := types.DeclID(atomic.AddUint64(&nextID, 1))
				f.record(id, nameNode, mainNode, fileID, content)
				receiver := string(content[recvNode.StartByte():recvNode.EndByte()])
				if _, seen := methodsByReceiver[receiver]; !seen {
					implOrder = append(implOrder, receiver)
				}
				methodsByReceiver[receiver] = append(methodsByReceiver[receiver], semdb.AssocItem{
					Kind:      semdb.AssocFunction,
					ID:        id,
					Container: semdb.AssocContainer{Kind: semdb.ContainerImpl},
				})

			case "type":
				nameNode, ok1 := named["type.name"]
				valueNode, ok2 := named["type.value"]
				if !ok1 {
					continue
				}
				id := types.DeclID(atomic.AddUint64(&nextID, 1))
				f.record(id, nameNode, mainNode, fileID, content)
				kind := semdb.DefTypeAlias
				if ok2 {
					switch valueNode.Kind() {
					case "struct_type":
						kind = semdb.DefStruct
					case "interface_type":
						kind = semdb.DefTrait
					}
				}
				f.scope.decls = append(f.scope.decls, semdb.ModuleDef{Kind: kind, ID: id})

			case "const":
				nameNode, ok := named["const.name"]
				if !ok {
					continue
				}
				id := types.DeclID(atomic.AddUint64(&nextID, 1))
				f.record(id, nameNode, mainNode, fileID, content)
				f.scope.decls = append(f.scope.decls, semdb.ModuleDef{
					Kind: semdb.DefConst,
					ID:   id,
					Container: semdb.AssocContainer{
						Kind: semdb.ContainerModule, Name: f.packageName, HasName: f.packageName != "",
					},
				})

			case "var":
				nameNode, ok := named["var.name"]
				if !ok {
					continue
				}
				id := types.DeclID(atomic.AddUint64(&nextID, 1))
				f.record(id, nameNode, mainNode, fileID, content)
				f.scope.decls = append(f.scope.decls, semdb.ModuleDef{Kind: semdb.DefStatic, ID: id})
			}
		}
		qc.Close()
	}

	for _, receiver := range implOrder {
		implID := types.ImplID(len(f.impls) + 1)
		f.impls[implID] = &implRecord{methods: methodsByReceiver[receiver]}
		f.scope.impls = append(f.scope.impls, implID)
	}

	return f, nil
}

func (f *Frontend) record(id types.DeclID, nameNode, wholeNode tree_sitter.Node, file types.FileID, content []byte) {
	f.decls[id] = declInfo{
		name:  string(content[nameNode.StartByte():nameNode.EndByte()]),
		file:  file,
		ptr:   types.SyntaxPtr{Start: uint32(wholeNode.StartByte()), End: uint32(wholeNode.EndByte())},
		namePtr: types.SyntaxPtr{Start: uint32(nameNode.StartByte()), End: uint32(nameNode.EndByte())},
	}
}

// --- semdb.Database ---

func (f *Frontend) SourceRoot(root types.SourceRootID) ([]types.FileID, error) {
	if root != rootSourceRoot {
		return nil, nil
	}
	ids := make([]types.FileID, len(f.files))
	for i := range f.files {
		ids[i] = types.FileID(i)
	}
	return ids, nil
}

func (f *Frontend) FileText(file types.FileID) (string, error) {
	if int(file) >= len(f.files) {
		return "", symerrors.NewFileError("read", "", fmt.Errorf("unknown file id %d", file))
	}
	return string(f.files[file].content), nil
}

func (f *Frontend) FilePath(file types.FileID) (string, bool) {
	if int(file) >= len(f.files) {
		return "", false
	}
	return f.files[file].path, true
}

func (f *Frontend) CrateRoot(crate types.CrateID) (types.SourceRootID, error) {
	if crate != crateID {
		return 0, fmt.Errorf("unknown crate %d", crate)
	}
	return rootSourceRoot, nil
}

func (f *Frontend) CrateDefMap(crate types.CrateID) (semdb.DefMap, error) {
	if crate != crateID {
		return nil, fmt.Errorf("unknown crate %d", crate)
	}
	return f, nil
}

func (f *Frontend) Body(types.BodyID) (semdb.Body, error) { return emptyBody{}, nil }

func (f *Frontend) ImplData(id types.ImplID) (semdb.ImplData, error) {
	rec, ok := f.impls[id]
	if !ok {
		return nil, fmt.Errorf("unknown impl %d", id)
	}
	return implData{rec}, nil
}

func (f *Frontend) TraitData(types.TraitID) (semdb.TraitData, error) { return emptyTrait{}, nil }

func (f *Frontend) Locate(id types.DeclID) (semdb.DeclSource, bool) {
	info, ok := f.decls[id]
	if !ok {
		return semdb.DeclSource{}, false
	}
	return semdb.DeclSource{
		HirFile: types.HirFileID(info.file),
		Ptr:     info.ptr,
		NamePtr: info.namePtr,
		Name:    info.name,
	}, true
}

func (f *Frontend) UnwindIfCancelled() error {
	if f.cancelled.Load() {
		return symerrors.Cancelled
	}
	return nil
}

// Cancel asks any in-progress collection over f to stop at its next
// work-item boundary.
func (f *Frontend) Cancel() { f.cancelled.Store(true) }

func (f *Frontend) Snapshot() semdb.Database { return f }

func (f *Frontend) LocalRoots() []types.SourceRootID   { return []types.SourceRootID{rootSourceRoot} }
func (f *Frontend) LibraryRoots() []types.SourceRootID { return nil }

// --- semdb.DefMap ---

func (f *Frontend) Modules() []types.LocalModuleID { return []types.LocalModuleID{rootLocal} }

func (f *Frontend) ModuleID(local types.LocalModuleID) types.ModuleID {
	return types.ModuleID{Crate: crateID, Local: local}
}

func (f *Frontend) Scope(types.LocalModuleID) semdb.ModuleScope { return f.scope }

func (f *Frontend) Declaration(types.LocalModuleID) (types.DeclID, bool) { return 0, false }

type emptyBody struct{}

func (emptyBody) Blocks() []semdb.DefMap { return nil }

type implData struct{ rec *implRecord }

func (d implData) Items() []semdb.AssocItem { return d.rec.methods }

type emptyTrait struct{}

func (emptyTrait) Items() []semdb.AssocItem { return nil }
func (emptyTrait) Name() (string, bool)     { return "", false }
