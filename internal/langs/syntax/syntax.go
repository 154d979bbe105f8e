// Package syntax collects FileSymbols from source trees no semantic
// database has been built for — library and vendored code reachable
// from a workspace but never itself opened as a crate. It mirrors what
// internal/langs/godef does for a real Go package, except a container
// name here comes only from how the grammar happens to nest one
// declaration inside another: there is no module resolution, no impl
// or trait model, just the shape of the parse tree.
package syntax

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/fast-ide/symindex/internal/types"
)

// rule maps one query pattern's top-level (non-dotted) capture to a
// symbol kind, naming which dotted captures of the same match hold the
// declaration's name and, optionally, its enclosing container's name.
type rule struct {
	main      string
	name      string
	container string
	kind      types.SymbolKind
}

type grammar struct {
	exts  []string
	query *tree_sitter.Query
	lang  *tree_sitter.Language
	rules []rule
}

var grammars []*grammar

func init() {
	for _, build := range []func() *grammar{
		newJavaScriptGrammar,
		newTypeScriptGrammar,
		newPythonGrammar,
		newRustGrammar,
		newCppGrammar,
		newJavaGrammar,
		newCSharpGrammar,
		newZigGrammar,
		newPHPGrammar,
	} {
		if g := build(); g != nil {
			grammars = append(grammars, g)
		}
	}
}

func compile(exts []string, languagePtr unsafe.Pointer, queryStr string, rules []rule) *grammar {
	language := tree_sitter.NewLanguage(languagePtr)
	query, _ := tree_sitter.NewQuery(language, queryStr)
	// Tree-sitter's Go binding can hand back a typed-nil error; the only
	// reliable signal that compilation failed is a nil query.
	if query == nil {
		return nil
	}
	return &grammar{exts: exts, query: query, lang: language, rules: rules}
}

func newJavaScriptGrammar() *grammar {
	const queryStr = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (variable_declarator
            name: (identifier) @function.name
            value: [(arrow_function) (function_expression) (generator_function)]) @function
        (variable_declarator
            name: (identifier) @variable.name
            value: (_) @variable.value) @variable
        (class_declaration
            name: (identifier) @class.name
            body: (class_body (method_definition name: (property_identifier) @method.name))) @method
        (class_declaration name: (identifier) @class.name) @class
    `
	return compile([]string{".js", ".jsx"}, tree_sitter_javascript.Language(), queryStr, []rule{
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "variable", name: "variable.name", kind: types.SymbolStatic},
		{main: "method", name: "method.name", container: "class.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
	})
}

func newTypeScriptGrammar() *grammar {
	const queryStr = `
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (function_expression name: (identifier) @function.name) @function
        (class_declaration
            name: (type_identifier) @class.name
            body: (class_body (method_definition name: (property_identifier) @method.name))) @method
        (class_declaration name: (type_identifier) @class.name) @class
        (interface_declaration name: (type_identifier) @interface.name) @interface
        (type_alias_declaration name: (type_identifier) @type.name) @type
        (enum_declaration name: (identifier) @enum.name) @enum
    `
	return compile([]string{".ts", ".tsx"}, tree_sitter_typescript.LanguageTypescript(), queryStr, []rule{
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "method", name: "method.name", container: "class.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
		{main: "interface", name: "interface.name", kind: types.SymbolTrait},
		{main: "type", name: "type.name", kind: types.SymbolTypeAlias},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
	})
}

func newPythonGrammar() *grammar {
	const queryStr = `
        (class_definition
            name: (identifier) @class.name
            body: (block
                (function_definition name: (identifier) @method.name))) @method
        (function_definition name: (identifier) @function.name) @function
        (class_definition name: (identifier) @class.name) @class
    `
	return compile([]string{".py"}, tree_sitter_python.Language(), queryStr, []rule{
		{main: "method", name: "method.name", container: "class.name", kind: types.SymbolFunction},
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
	})
}

func newRustGrammar() *grammar {
	const queryStr = `
        (impl_item
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (trait_item
            body: (declaration_list
                (function_item name: (identifier) @method.name))) @method
        (function_item name: (identifier) @function.name) @function
        (struct_item name: (type_identifier) @struct.name) @struct
        (enum_item name: (type_identifier) @enum.name) @enum
        (trait_item name: (type_identifier) @interface.name) @interface
        (type_item name: (type_identifier) @type.name) @type
        (mod_item name: (identifier) @module.name) @module
    `
	return compile([]string{".rs"}, tree_sitter_rust.Language(), queryStr, []rule{
		// impl/trait bodies never surface a container here, matching
		// how an impl block itself never carries a name either.
		{main: "method", name: "method.name", kind: types.SymbolFunction},
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "struct", name: "struct.name", kind: types.SymbolStruct},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
		{main: "interface", name: "interface.name", kind: types.SymbolTrait},
		{main: "type", name: "type.name", kind: types.SymbolTypeAlias},
		{main: "module", name: "module.name", kind: types.SymbolModule},
	})
}

func newCppGrammar() *grammar {
	const queryStr = `
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (class_specifier name: (type_identifier) @class.name) @class
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
    `
	return compile([]string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"}, tree_sitter_cpp.Language(), queryStr, []rule{
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
		{main: "struct", name: "struct.name", kind: types.SymbolStruct},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
	})
}

func newJavaGrammar() *grammar {
	const queryStr = `
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (class_declaration name: (identifier) @class.name) @class
        (record_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
    `
	return compile([]string{".java"}, tree_sitter_java.Language(), queryStr, []rule{
		{main: "method", name: "method.name", kind: types.SymbolFunction},
		{main: "constructor", name: "constructor.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
		{main: "interface", name: "interface.name", kind: types.SymbolTrait},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
	})
}

func newCSharpGrammar() *grammar {
	const queryStr = `
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (class_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @interface.name) @interface
        (struct_declaration name: (identifier) @struct.name) @struct
        (record_declaration name: (identifier) @record.name) @record
        (enum_declaration name: (identifier) @enum.name) @enum
        (delegate_declaration name: (identifier) @delegate.name) @delegate
    `
	return compile([]string{".cs"}, tree_sitter_csharp.Language(), queryStr, []rule{
		{main: "method", name: "method.name", kind: types.SymbolFunction},
		{main: "constructor", name: "constructor.name", kind: types.SymbolFunction},
		{main: "class", name: "class.name", kind: types.SymbolStruct},
		{main: "interface", name: "interface.name", kind: types.SymbolTrait},
		{main: "struct", name: "struct.name", kind: types.SymbolStruct},
		{main: "record", name: "record.name", kind: types.SymbolStruct},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
		{main: "delegate", name: "delegate.name", kind: types.SymbolTypeAlias},
	})
}

func newZigGrammar() *grammar {
	const queryStr = `
        (function_declaration (identifier) @function.name) @function
        (variable_declaration
          (identifier) @struct.name
          (struct_declaration) @struct)
        (variable_declaration
          (identifier) @struct.name
          (union_declaration) @struct)
    `
	return compile([]string{".zig"}, tree_sitter_zig.Language(), queryStr, []rule{
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "struct", name: "struct.name", kind: types.SymbolStruct},
	})
}

func newPHPGrammar() *grammar {
	const queryStr = `
        (class_declaration name: (name) @class.name) @class
        (interface_declaration name: (name) @interface.name) @interface
        (trait_declaration name: (name) @trait.name) @trait
        (enum_declaration name: (name) @enum.name) @enum
        (function_definition name: (name) @function.name) @function
        (method_declaration name: (name) @method.name) @method
    `
	return compile([]string{".php", ".phtml"}, tree_sitter_php.LanguagePHP(), queryStr, []rule{
		{main: "class", name: "class.name", kind: types.SymbolStruct},
		{main: "interface", name: "interface.name", kind: types.SymbolTrait},
		{main: "trait", name: "trait.name", kind: types.SymbolTrait},
		{main: "enum", name: "enum.name", kind: types.SymbolEnum},
		{main: "function", name: "function.name", kind: types.SymbolFunction},
		{main: "method", name: "method.name", kind: types.SymbolFunction},
	})
}

func grammarFor(path string) *grammar {
	ext := strings.ToLower(filepath.Ext(path))
	for _, g := range grammars {
		for _, e := range g.exts {
			if e == ext {
				return g
			}
		}
	}
	return nil
}

// ExtractFile parses content with whichever grammar matches path's
// extension and returns the symbols it finds tagged with file. Returns
// (nil, nil) for an extension no grammar here covers.
func ExtractFile(path string, content []byte, file types.FileID) ([]types.FileSymbol, error) {
	g := grammarFor(path)
	if g == nil {
		return nil, nil
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(g.lang); err != nil {
		return nil, err
	}
	tree := parser.Parse(content, nil)
	root := tree.RootNode()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(g.query, root, content)
	captureNames := g.query.CaptureNames()

	var out []types.FileSymbol
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

		for _, r := range g.rules {
			if r.main != mainCapture {
				continue
			}
			nameNode, ok := named[r.name]
			if !ok {
				continue
			}
			sym := types.FileSymbol{
				Name: string(content[nameNode.StartByte():nameNode.EndByte()]),
				Kind: r.kind,
				Loc: types.DeclarationLocation{
					HirFile: types.HirFileID(file),
					Ptr:     types.SyntaxPtr{Start: uint32(mainNode.StartByte()), End: uint32(mainNode.EndByte())},
					NamePtr: types.SyntaxPtr{Start: uint32(nameNode.StartByte()), End: uint32(nameNode.EndByte())},
				},
			}
			if r.container != "" {
				if containerNode, ok := named[r.container]; ok {
					sym.ContainerName = string(content[containerNode.StartByte():containerNode.EndByte()])
				}
			}
			out = append(out, sym)
			break
		}
	}
	return out, nil
}

// Collect walks dir recursively and extracts symbols from every file a
// grammar here recognizes, returning the symbols alongside the on-disk
// path each types.FileID in them refers to (paths[i] is the path for
// file id i).
func Collect(dir string) ([]types.FileSymbol, []string, error) {
	var symbols []types.FileSymbol
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if grammarFor(path) == nil || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		file := types.FileID(len(paths))
		paths = append(paths, path)
		syms, err := ExtractFile(path, content, file)
		if err != nil {
			return err
		}
		symbols = append(symbols, syms...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return symbols, paths, nil
}
