// Package types holds the opaque value types shared by every layer of the
// workspace symbol index: identifiers minted by a semantic database
// frontend, and the symbol record produced by the collector and stored in
// a SymbolIndex.
package types

// SourceRootID identifies a set of files forming one crate's filesystem
// footprint. The host partitions these into local roots (workspace,
// mutable) and library roots (dependencies, immutable).
type SourceRootID uint32

// CrateID identifies one compilation unit (a Rust crate, a Go package, ...).
type CrateID uint32

// FileID identifies a file on disk within a source root.
type FileID uint32

// HirFileID opaquely identifies a (possibly macro-expanded) file as seen by
// the semantic database. For frontends with no macro expansion it is
// simply an alias of the underlying FileID.
type HirFileID uint64

// LocalModuleID is a module id local to a single crate's DefMap.
type LocalModuleID uint32

// ModuleID is a module id resolved against its owning crate.
type ModuleID struct {
	Crate CrateID
	Local LocalModuleID
}

// DeclID is the opaque numeric handle a Database mints for any named
// declaration (function, struct, enum, union, const, static, trait,
// type alias, macro, module). It is reinterpreted as a BodyID, ImplID or
// TraitID by the collector when a declaration also introduces further
// work; the Database implementation is responsible for keeping those
// reinterpretations meaningful for the ids it minted.
type DeclID uint64

// BodyID identifies a function/const/static body that may itself contain
// nested, block-scoped modules.
type BodyID uint64

// AsBody reinterprets a declaration id as the id of its body.
func (id DeclID) AsBody() BodyID { return BodyID(id) }

// ImplID identifies an impl block. Impl blocks are themselves anonymous:
// no FileSymbol is ever emitted for the block itself, only for its
// associated items.
type ImplID uint64

// TraitID identifies a trait (or interface) declaration.
type TraitID uint64

// AsTrait reinterprets a declaration id as the id of the trait it declares.
func (id DeclID) AsTrait() TraitID { return TraitID(id) }
