package collector

import (
	"errors"
	"testing"

	"github.com/fast-ide/symindex/internal/semdb"
	"github.com/fast-ide/symindex/internal/types"
)

// fakeDefMap is a minimal, hand-built semdb.DefMap used to drive the
// collector through every branch without needing a real language
// frontend: one crate-level module tree plus two body-nested def-maps.
type fakeDefMap struct {
	modules []types.LocalModuleID
	scopes  map[types.LocalModuleID]*fakeScope
}

func (m *fakeDefMap) Modules() []types.LocalModuleID { return m.modules }
func (m *fakeDefMap) ModuleID(local types.LocalModuleID) types.ModuleID {
	return types.ModuleID{Crate: 1, Local: local}
}
func (m *fakeDefMap) Scope(local types.LocalModuleID) semdb.ModuleScope { return m.scopes[local] }
func (m *fakeDefMap) Declaration(local types.LocalModuleID) (types.DeclID, bool) {
	return 0, false
}

type fakeScope struct {
	decls         []semdb.ModuleDef
	impls         []types.ImplID
	unnamedConsts []types.BodyID
	macros        []types.DeclID
}

func (s *fakeScope) Declarations() []semdb.ModuleDef    { return s.decls }
func (s *fakeScope) Impls() []types.ImplID              { return s.impls }
func (s *fakeScope) UnnamedConsts() []types.BodyID      { return s.unnamedConsts }
func (s *fakeScope) MacroDeclarations() []types.DeclID  { return s.macros }

type fakeBody struct {
	blocks []semdb.DefMap
}

func (b *fakeBody) Blocks() []semdb.DefMap { return b.blocks }

type fakeImplData struct{ items []semdb.AssocItem }

func (d *fakeImplData) Items() []semdb.AssocItem { return d.items }

type fakeTraitData struct {
	items   []semdb.AssocItem
	name    string
	hasName bool
}

func (d *fakeTraitData) Items() []semdb.AssocItem { return d.items }
func (d *fakeTraitData) Name() (string, bool)     { return d.name, d.hasName }

type fakeDB struct {
	defMap    *fakeDefMap
	bodies    map[types.BodyID]*fakeBody
	impls     map[types.ImplID]*fakeImplData
	traits    map[types.TraitID]*fakeTraitData
	names     map[types.DeclID]string
	cancelled bool
}

func (db *fakeDB) SourceRoot(types.SourceRootID) ([]types.FileID, error) { return nil, nil }
func (db *fakeDB) FileText(types.FileID) (string, error)                { return "", nil }
func (db *fakeDB) FilePath(types.FileID) (string, bool)                 { return "", false }
func (db *fakeDB) CrateRoot(types.CrateID) (types.SourceRootID, error)  { return 0, nil }

func (db *fakeDB) CrateDefMap(types.CrateID) (semdb.DefMap, error) { return db.defMap, nil }

func (db *fakeDB) Body(id types.BodyID) (semdb.Body, error) {
	b, ok := db.bodies[id]
	if !ok {
		return &fakeBody{}, nil
	}
	return b, nil
}

func (db *fakeDB) ImplData(id types.ImplID) (semdb.ImplData, error) { return db.impls[id], nil }
func (db *fakeDB) TraitData(id types.TraitID) (semdb.TraitData, error) {
	return db.traits[id], nil
}

func (db *fakeDB) Locate(id types.DeclID) (semdb.DeclSource, bool) {
	name, ok := db.names[id]
	if !ok {
		return semdb.DeclSource{}, false
	}
	return semdb.DeclSource{Name: name}, true
}

func (db *fakeDB) UnwindIfCancelled() error {
	if db.cancelled {
		return errors.New("cancelled")
	}
	return nil
}

func (db *fakeDB) Snapshot() semdb.Database          { return db }
func (db *fakeDB) LocalRoots() []types.SourceRootID  { return nil }
func (db *fakeDB) LibraryRoots() []types.SourceRootID { return nil }

func buildScenario() *fakeDB {
	innerDefMap := &fakeDefMap{
		modules: []types.LocalModuleID{0},
		scopes: map[types.LocalModuleID]*fakeScope{
			0: {decls: []semdb.ModuleDef{{Kind: semdb.DefStruct, ID: 10}}},
		},
	}
	anonDefMap := &fakeDefMap{
		modules: []types.LocalModuleID{0},
		scopes: map[types.LocalModuleID]*fakeScope{
			0: {decls: []semdb.ModuleDef{{Kind: semdb.DefFunction, ID: 11}}},
		},
	}
	root := &fakeDefMap{
		modules: []types.LocalModuleID{0},
		scopes: map[types.LocalModuleID]*fakeScope{
			0: {
				decls: []semdb.ModuleDef{
					{Kind: semdb.DefModule, ID: 1},
					{Kind: semdb.DefFunction, ID: 2, Container: semdb.AssocContainer{Kind: semdb.ContainerModule, Name: "root", HasName: true}},
					{Kind: semdb.DefStatic, ID: 6},
					{Kind: semdb.DefEnum, ID: 99}, // deliberately unnamed: dropped
				},
				impls:         []types.ImplID{50},
				unnamedConsts: []types.BodyID{200},
				macros:        []types.DeclID{7},
			},
		},
	}

	return &fakeDB{
		defMap: root,
		bodies: map[types.BodyID]*fakeBody{
			2:   {blocks: []semdb.DefMap{innerDefMap}},
			3:   {},
			5:   {},
			6:   {},
			200: {blocks: []semdb.DefMap{anonDefMap}},
		},
		impls: map[types.ImplID]*fakeImplData{
			50: {items: []semdb.AssocItem{
				{Kind: semdb.AssocFunction, ID: 3, Container: semdb.AssocContainer{Kind: semdb.ContainerImpl}},
			}},
		},
		traits: map[types.TraitID]*fakeTraitData{
			60: {
				name:    "Greet",
				hasName: true,
				items: []semdb.AssocItem{
					{Kind: semdb.AssocFunction, ID: 5, Container: semdb.AssocContainer{Kind: semdb.ContainerTrait, Name: "Greet", HasName: true}},
				},
			},
		},
		names: map[types.DeclID]string{
			1:  "sub",
			2:  "foo",
			3:  "bar",
			5:  "hello",
			6:  "COUNT",
			7:  "my_macro!",
			10: "Inner",
			11: "buried",
			// 99 intentionally absent: Locate(99) returns ok=false.
		},
	}
}

func find(t *testing.T, syms []types.FileSymbol, name string) types.FileSymbol {
	t.Helper()
	for _, s := range syms {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("symbol %q not found in %v", name, syms)
	return types.FileSymbol{}
}

func TestCollectWholeScenario(t *testing.T) {
	db := buildScenario()
	// Add a trait declaration to the root scope so doModule enqueues
	// Trait work and doTrait runs on it.
	db.defMap.scopes[0].decls = append(db.defMap.scopes[0].decls,
		semdb.ModuleDef{Kind: semdb.DefTrait, ID: 4})
	db.names[4] = "Greet"
	// Route the trait declaration's id to the registered TraitData.
	db.traits[types.TraitID(4)] = db.traits[60]

	syms, err := Collect(db, 1, 0)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(syms) != 9 {
		names := make([]string, len(syms))
		for i, s := range syms {
			names[i] = s.Name
		}
		t.Fatalf("got %d symbols, want 9: %v", len(syms), names)
	}

	if s := find(t, syms, "sub"); s.Kind != types.SymbolModule || s.ContainerName != "" {
		t.Errorf("sub: got kind=%v container=%q", s.Kind, s.ContainerName)
	}
	if s := find(t, syms, "foo"); s.Kind != types.SymbolFunction || s.ContainerName != "root" {
		t.Errorf("foo: got kind=%v container=%q, want Function/root", s.Kind, s.ContainerName)
	}
	if s := find(t, syms, "Inner"); s.ContainerName != "foo" {
		t.Errorf("Inner: container=%q, want foo (nested inside foo's body)", s.ContainerName)
	}
	if s := find(t, syms, "bar"); s.ContainerName != "" {
		t.Errorf("bar (impl member): container=%q, want empty — impls never report a container", s.ContainerName)
	}
	if s := find(t, syms, "hello"); s.ContainerName != "Greet" {
		t.Errorf("hello (trait member): container=%q, want Greet", s.ContainerName)
	}
	if s := find(t, syms, "COUNT"); s.ContainerName != "" {
		t.Errorf("COUNT: container=%q, want empty — statics resolve only from the ambient frame, not the db", s.ContainerName)
	}
	if s := find(t, syms, "buried"); s.ContainerName != "" {
		t.Errorf("buried (nested in an unnamed const's body): container=%q, want empty", s.ContainerName)
	}

	for _, s := range syms {
		if s.Name == "" {
			t.Errorf("unexpected unnamed symbol in result: %+v", s)
		}
	}
}

func TestCollectStopsOnCancellation(t *testing.T) {
	db := buildScenario()
	db.cancelled = true
	_, err := Collect(db, 1, 0)
	if err == nil {
		t.Fatal("expected an error when the database reports cancellation")
	}
}

func TestCollectEmptyModule(t *testing.T) {
	db := &fakeDB{
		defMap: &fakeDefMap{
			modules: []types.LocalModuleID{0},
			scopes:  map[types.LocalModuleID]*fakeScope{0: {}},
		},
		names: map[types.DeclID]string{},
	}
	syms, err := Collect(db, 1, 0)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(syms) != 0 {
		t.Fatalf("got %d symbols for an empty module, want 0", len(syms))
	}
}
