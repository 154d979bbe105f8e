// Package semdb states the contract the symbol index consumes from an
// external semantic database. Everything in this package is an interface
// or a plain data carrier: no logic lives here.
// A language frontend (internal/langs/godef for a real one,
// internal/collector's test fakes for synthetic ones) implements Database;
// internal/collector walks it; internal/memo and internal/workspace never
// see anything but these interfaces.
package semdb

import "github.com/fast-ide/symindex/internal/types"

// DeclSource is what a Database reports when asked to resolve a DeclID:
// the file (possibly macro-expanded) it lives in, pointers to the whole
// declaration and to its name identifier, and the name text itself.
type DeclSource struct {
	HirFile types.HirFileID
	Ptr     types.SyntaxPtr
	NamePtr types.SyntaxPtr
	Name    string
}

// AssocContainerKind tags what kind of thing directly encloses an
// associated item (a Function, Const or TypeAlias declaration).
type AssocContainerKind uint8

const (
	// ContainerModule: the item sits directly in a module's scope.
	ContainerModule AssocContainerKind = iota
	// ContainerTrait: the item is a trait member.
	ContainerTrait
	// ContainerImpl: the item is an impl member. Impls never report a
	// name here regardless of the concrete receiver/self type — HasName
	// is always false for this kind.
	ContainerImpl
)

// AssocContainer is the database's answer to "what directly contains this
// associated item, and what is that container's own declared name (if
// any)?" The collector prefers this over the ambient container name it
// carries on the worklist; HasName == false means "fall back to
// ambient", which is the only possible outcome for ContainerImpl.
type AssocContainer struct {
	Kind    AssocContainerKind
	Name    string
	HasName bool
}

// ModuleDefKind tags one entry of a module's resolved scope
// (ModuleScope.Declarations).
type ModuleDefKind uint8

const (
	DefModule ModuleDefKind = iota
	DefFunction
	DefStruct
	DefEnum
	DefUnion
	DefConst
	DefStatic
	DefTrait
	DefTypeAlias
	DefBuiltinType
	DefEnumVariant
)

// ModuleDef is one item out of ModuleScope.Declarations. Container is only
// populated (and only consulted) for the "associated item" kinds —
// Function, Const, TypeAlias — which can equally be module-level items,
// trait members or impl members; every other kind resolves its
// container name purely from the collector's ambient worklist frame.
type ModuleDef struct {
	Kind      ModuleDefKind
	ID        types.DeclID
	Container AssocContainer
}

// AssocItemKind tags one item returned by ImplData/TraitData.Items.
type AssocItemKind uint8

const (
	AssocFunction AssocItemKind = iota
	AssocConst
	AssocTypeAlias
)

// AssocItem is one associated item of an impl or trait block.
type AssocItem struct {
	Kind      AssocItemKind
	ID        types.DeclID
	Container AssocContainer
}

// ModuleScope is the resolved scope of a single module (DefMap[local_id].scope).
type ModuleScope interface {
	Declarations() []ModuleDef
	Impls() []types.ImplID
	UnnamedConsts() []types.BodyID
	MacroDeclarations() []types.DeclID
}

// DefMap is a crate's (or a body-block's) resolved module tree.
type DefMap interface {
	// Modules lists every module local to this def-map.
	Modules() []types.LocalModuleID
	// ModuleID resolves a local module id against its owning crate.
	ModuleID(local types.LocalModuleID) types.ModuleID
	// Scope returns the resolved scope of one local module.
	Scope(local types.LocalModuleID) ModuleScope
	// Declaration returns the DeclID of the module item that introduced
	// this module (origin.declaration()). ok is false for a crate root
	// with no introducing declaration. The collector does not call it:
	// nested modules are emitted from their DefModule scope entries, and
	// container names come from AssocContainer or the worklist frame.
	Declaration(local types.LocalModuleID) (types.DeclID, bool)
}

// Body is a function/const/static body, inspected only for nested
// block-scoped module def-maps.
type Body interface {
	Blocks() []DefMap
}

// ImplData is the resolved contents of one impl block.
type ImplData interface {
	Items() []AssocItem
}

// TraitData is the resolved contents of one trait declaration.
type TraitData interface {
	Items() []AssocItem
	// Name is the trait's own declared name, if it has an identifier.
	Name() (string, bool)
}

// Database is the full external contract. A Database value must be cheap
// to pass around; Snapshot returns an independent read-only view safe for
// use from another goroutine.
type Database interface {
	SourceRoot(root types.SourceRootID) ([]types.FileID, error)
	FileText(file types.FileID) (string, error)
	// FilePath returns the on-disk path backing file, used by the
	// memoizing cache above this package to watch the right files for
	// invalidation. Frontends with no on-disk backing (e.g. a purely
	// in-memory test double) may return ok=false.
	FilePath(file types.FileID) (path string, ok bool)
	// CrateRoot returns crate's primary source root.
	CrateRoot(crate types.CrateID) (types.SourceRootID, error)

	CrateDefMap(crate types.CrateID) (DefMap, error)
	Body(id types.BodyID) (Body, error)
	ImplData(id types.ImplID) (ImplData, error)
	TraitData(id types.TraitID) (TraitData, error)

	// Locate resolves any declaration id to its source. ok is false when
	// the declaration has no name identifier (silently dropped by the
	// collector) or the id is unknown to this database.
	Locate(id types.DeclID) (DeclSource, bool)

	// UnwindIfCancelled returns a non-nil error (of a sentinel kind the
	// caller recognizes, see internal/errors) iff the current operation
	// has been asked to cancel. Polled by the collector before each
	// work-item pop.
	UnwindIfCancelled() error

	// Snapshot returns a cheaply clonable, read-only view of the
	// database usable from a worker goroutine.
	Snapshot() Database

	LocalRoots() []types.SourceRootID
	LibraryRoots() []types.SourceRootID
}
