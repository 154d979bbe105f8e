// Package collector walks a semdb.Database starting from one module and
// produces every FileSymbol reachable from it: the module's own
// declarations, the associated items of any impls and traits it owns,
// and any modules declared inside a function/const/static body.
package collector

import (
	"github.com/fast-ide/symindex/internal/semdb"
	"github.com/fast-ide/symindex/internal/types"
)

type workKind uint8

const (
	workModule workKind = iota
	workBody
	workImpl
	workTrait
)

// workItem is one unit of the collection worklist. ambient is the
// container name this frame was entered with — "" at the top-level call,
// or the name of the function/const/static whose body introduced this
// module, for modules nested inside a body.
type workItem struct {
	kind workKind

	defMap semdb.DefMap
	local  types.LocalModuleID

	bodyID  types.BodyID
	implID  types.ImplID
	traitID types.TraitID

	ambient    string
	hasAmbient bool
}

// Collect returns every symbol declared directly in the module (crate,
// local), recursing only into body-nested modules — sibling and child
// modules reachable from the crate's own module tree are each collected
// by their own separate Collect call, one per module, matching how a
// caller enumerates a crate's full module list.
func Collect(db semdb.Database, crate types.CrateID, local types.LocalModuleID) ([]types.FileSymbol, error) {
	defMap, err := db.CrateDefMap(crate)
	if err != nil {
		return nil, err
	}
	c := &collector{db: db}
	c.push(workItem{kind: workModule, defMap: defMap, local: local})
	if err := c.run(); err != nil {
		return nil, err
	}
	return c.symbols, nil
}

type collector struct {
	db      semdb.Database
	work    []workItem
	symbols []types.FileSymbol
}

func (c *collector) push(w workItem) { c.work = append(c.work, w) }

func (c *collector) run() error {
	for len(c.work) > 0 {
		if err := c.db.UnwindIfCancelled(); err != nil {
			return err
		}
		n := len(c.work) - 1
		w := c.work[n]
		c.work = c.work[:n]

		var err error
		switch w.kind {
		case workModule:
			err = c.doModule(w)
		case workBody:
			err = c.doBody(w)
		case workImpl:
			err = c.doImpl(w)
		case workTrait:
			err = c.doTrait(w)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) ambientOf(w workItem) string {
	if w.hasAmbient {
		return w.ambient
	}
	return ""
}

func (c *collector) doModule(w workItem) error {
	ambient := c.ambientOf(w)
	scope := w.defMap.Scope(w.local)

	for _, decl := range scope.Declarations() {
		switch decl.Kind {
		case semdb.DefModule:
			c.emit(decl.ID, types.SymbolModule, ambient)

		case semdb.DefFunction:
			name := resolveContainer(decl.Container, ambient)
			c.emit(decl.ID, types.SymbolFunction, name)
			c.push(workItem{kind: workBody, bodyID: decl.ID.AsBody()})

		case semdb.DefConst:
			name := resolveContainer(decl.Container, ambient)
			c.emit(decl.ID, types.SymbolConst, name)
			c.push(workItem{kind: workBody, bodyID: decl.ID.AsBody()})

		case semdb.DefTypeAlias:
			name := resolveContainer(decl.Container, ambient)
			c.emit(decl.ID, types.SymbolTypeAlias, name)

		case semdb.DefStruct:
			c.emit(decl.ID, types.SymbolStruct, ambient)
		case semdb.DefEnum:
			c.emit(decl.ID, types.SymbolEnum, ambient)
		case semdb.DefUnion:
			c.emit(decl.ID, types.SymbolUnion, ambient)

		case semdb.DefStatic:
			c.emit(decl.ID, types.SymbolStatic, ambient)
			c.push(workItem{kind: workBody, bodyID: decl.ID.AsBody()})

		case semdb.DefTrait:
			c.emit(decl.ID, types.SymbolTrait, ambient)
			c.push(workItem{kind: workTrait, traitID: decl.ID.AsTrait()})

		case semdb.DefBuiltinType, semdb.DefEnumVariant:
			// Neither introduces a standalone symbol: builtin types have
			// no declaration site, and a variant is only reachable by
			// searching for its owning enum.
		}
	}

	for _, implID := range scope.Impls() {
		c.push(workItem{kind: workImpl, implID: implID})
	}
	for _, bodyID := range scope.UnnamedConsts() {
		c.push(workItem{kind: workBody, bodyID: bodyID})
	}
	for _, declID := range scope.MacroDeclarations() {
		c.emit(declID, types.SymbolMacro, ambient)
	}
	return nil
}

func (c *collector) doBody(w workItem) error {
	body, err := c.db.Body(w.bodyID)
	if err != nil {
		return err
	}
	bodyName := ""
	if src, ok := c.db.Locate(types.DeclID(w.bodyID)); ok {
		bodyName = src.Name
	}
	for _, block := range body.Blocks() {
		for _, local := range block.Modules() {
			c.push(workItem{
				kind:       workModule,
				defMap:     block,
				local:      local,
				ambient:    bodyName,
				hasAmbient: bodyName != "",
			})
		}
	}
	return nil
}

func (c *collector) doImpl(w workItem) error {
	data, err := c.db.ImplData(w.implID)
	if err != nil {
		return err
	}
	for _, item := range data.Items() {
		// Impls never report a container name of their own; absent an
		// ambient frame (impls are never reached with one), this is "".
		name := resolveContainer(item.Container, "")
		c.emitAssoc(item, name)
	}
	return nil
}

func (c *collector) doTrait(w workItem) error {
	data, err := c.db.TraitData(w.traitID)
	if err != nil {
		return err
	}
	traitName, _ := data.Name()
	for _, item := range data.Items() {
		name := resolveContainer(item.Container, traitName)
		c.emitAssoc(item, name)
	}
	return nil
}

func (c *collector) emitAssoc(item semdb.AssocItem, container string) {
	switch item.Kind {
	case semdb.AssocFunction:
		c.emit(item.ID, types.SymbolFunction, container)
		c.push(workItem{kind: workBody, bodyID: item.ID.AsBody()})
	case semdb.AssocConst:
		c.emit(item.ID, types.SymbolConst, container)
		c.push(workItem{kind: workBody, bodyID: item.ID.AsBody()})
	case semdb.AssocTypeAlias:
		c.emit(item.ID, types.SymbolTypeAlias, container)
	}
}

// emit resolves id to its source and, if it has a name, appends the
// FileSymbol. Declarations without a name identifier are silently
// dropped.
func (c *collector) emit(id types.DeclID, kind types.SymbolKind, container string) {
	src, ok := c.db.Locate(id)
	if !ok {
		return
	}
	c.symbols = append(c.symbols, types.FileSymbol{
		Name:          src.Name,
		Kind:          kind,
		ContainerName: container,
		Loc: types.DeclarationLocation{
			HirFile: src.HirFile,
			Ptr:     src.Ptr,
			NamePtr: src.NamePtr,
		},
	})
}

// resolveContainer prefers the database's own answer for an associated
// item's container, falling back to the ambient name carried by the
// current work frame — the only path available for impl members, which
// the database always reports as containerless.
func resolveContainer(c semdb.AssocContainer, ambient string) string {
	if c.HasName {
		return c.Name
	}
	return ambient
}
