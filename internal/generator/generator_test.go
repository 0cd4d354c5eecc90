package generator

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/tordrt/migrationgen/internal/db"
	"github.com/tordrt/migrationgen/internal/db/mocks"
	"github.com/tordrt/migrationgen/internal/formatter"
)

// stepClock returns start, start+1, ...
type stepClock struct {
	next int64
}

func (c *stepClock) NowMillis() int64 {
	ts := c.next
	c.next++
	return ts
}

func simpleTable() mocks.MockTable {
	return mocks.MockTable{
		Columns: []db.ColumnRow{{Field: "id", Type: "int", Null: "NO", Key: "PRI", Extra: "auto_increment"}},
		Indexes: []db.IndexRow{{KeyName: "PRIMARY", ColumnName: "id", SeqInIndex: 1}},
	}
}

func schemaCatalog() *mocks.MockCatalog {
	return &mocks.MockCatalog{
		Names: []string{"users", "orders"},
		Tables: map[string]mocks.MockTable{
			"users": {
				Columns: []db.ColumnRow{
					{Field: "id", Type: "int", Null: "NO", Key: "PRI", Extra: "auto_increment"},
					{Field: "email", Type: "varchar(255)", Null: "NO", Key: "UNI"},
					{Field: "status", Type: "enum('a','b')", Null: "NO", Default: sql.NullString{String: "a", Valid: true}},
				},
				Indexes: []db.IndexRow{
					{KeyName: "PRIMARY", ColumnName: "id", SeqInIndex: 1},
					{KeyName: "idx_email", ColumnName: "email", SeqInIndex: 1},
				},
			},
			"orders": {
				Columns: []db.ColumnRow{
					{Field: "id", Type: "int", Null: "NO", Key: "PRI", Extra: "auto_increment"},
					{Field: "order_id", Type: "int", Null: "NO", Key: "MUL"},
					{Field: "item_id", Type: "int", Null: "NO"},
				},
				Indexes: []db.IndexRow{
					{KeyName: "PRIMARY", ColumnName: "id", SeqInIndex: 1},
					{KeyName: "ux_order_item", ColumnName: "order_id", SeqInIndex: 1},
					{KeyName: "ux_order_item", ColumnName: "item_id", SeqInIndex: 2},
				},
			},
		},
	}
}

func newTestGenerator(t *testing.T, catalog db.Catalog, fs afero.Fs) *Generator {
	t.Helper()

	if err := fs.MkdirAll("out", 0755); err != nil {
		t.Fatal(err)
	}
	f, err := formatter.NewTypeORMFormatter()
	if err != nil {
		t.Fatalf("NewTypeORMFormatter() error = %v", err)
	}

	return New(catalog, formatter.NewArtifactWriter(fs, "out", f), WithClock(&stepClock{next: 1000}))
}

func readArtifact(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}

func TestGenerateTableCollapsesColumnIndexes(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := newTestGenerator(t, schemaCatalog(), fs)

	path, err := g.GenerateTable(context.Background(), "users")
	if err != nil {
		t.Fatalf("GenerateTable() error = %v", err)
	}

	if want := filepath.Join("out", "1000-Users.ts"); path != want {
		t.Errorf("GenerateTable() path = %s, want %s", path, want)
	}

	content := readArtifact(t, fs, path)

	if got := strings.Count(content, "new TableColumn({"); got != 3 {
		t.Errorf("expected 3 columns, got %d", got)
	}
	for _, unwanted := range []string{"TableUnique", "uniques:", "dropIndex"} {
		if strings.Contains(content, unwanted) {
			t.Errorf("expected no %q in output:\n%s", unwanted, content)
		}
	}
	for _, wanted := range []string{
		"export class CreateUsers1000 implements MigrationInterface",
		`enum: ["a","b"],`,
		`default: "\"a\"",`,
		`await queryRunner.dropTable("users");`,
	} {
		if !strings.Contains(content, wanted) {
			t.Errorf("expected %q in output:\n%s", wanted, content)
		}
	}
}

func TestGenerateTableCompositeUnique(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := newTestGenerator(t, schemaCatalog(), fs)

	path, err := g.GenerateTable(context.Background(), "orders")
	if err != nil {
		t.Fatalf("GenerateTable() error = %v", err)
	}

	content := readArtifact(t, fs, path)

	if got := strings.Count(content, "new TableUnique({"); got != 1 {
		t.Errorf("expected 1 unique, got %d", got)
	}
	if !strings.Contains(content, `columnNames: ["order_id","item_id"],`) {
		t.Errorf("expected composite column list in output:\n%s", content)
	}

	dropIndex := strings.Index(content, `await queryRunner.dropIndex("orders", "ux_order_item");`)
	dropTable := strings.Index(content, `await queryRunner.dropTable("orders");`)
	if dropIndex == -1 || dropTable == -1 || dropIndex > dropTable {
		t.Errorf("expected index drop before table drop:\n%s", content)
	}
}

func TestGenerateAll(t *testing.T) {
	catalog := &mocks.MockCatalog{
		Names: []string{"a", "b", "c"},
		Tables: map[string]mocks.MockTable{
			"a": simpleTable(),
			"b": simpleTable(),
			"c": simpleTable(),
		},
	}
	fs := afero.NewMemMapFs()
	g := newTestGenerator(t, catalog, fs)

	paths, err := g.GenerateAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	wantPaths := []string{
		filepath.Join("out", "1000-A.ts"),
		filepath.Join("out", "1001-B.ts"),
		filepath.Join("out", "1002-C.ts"),
	}
	if diff := cmp.Diff(wantPaths, paths); diff != "" {
		t.Errorf("GenerateAll() paths mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []string{
		"tables",
		"columns:a", "indexes:a",
		"columns:b", "indexes:b",
		"columns:c", "indexes:c",
	}
	if diff := cmp.Diff(wantCalls, catalog.Calls); diff != "" {
		t.Errorf("catalog calls mismatch (-want +got):\n%s", diff)
	}

	entries, err := afero.ReadDir(fs, "out")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 artifacts, got %d", len(entries))
	}
}

func TestGenerateAllExcludesTables(t *testing.T) {
	catalog := &mocks.MockCatalog{
		Names:  []string{"a", "migrations", "c"},
		Tables: map[string]mocks.MockTable{"a": simpleTable(), "c": simpleTable()},
	}
	g := newTestGenerator(t, catalog, afero.NewMemMapFs())

	paths, err := g.GenerateAll(context.Background(), []string{"migrations"})
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 artifacts, got %v", paths)
	}
}

func TestGenerateAllStopsAtFirstFailure(t *testing.T) {
	queryErr := errors.New("lost connection")
	catalog := &mocks.MockCatalog{
		Names:  []string{"a", "b", "c"},
		Tables: map[string]mocks.MockTable{"a": simpleTable(), "c": simpleTable()},
		Fail:   map[string]error{"b": queryErr},
	}
	fs := afero.NewMemMapFs()
	g := newTestGenerator(t, catalog, fs)

	paths, err := g.GenerateAll(context.Background(), nil)
	if !errors.Is(err, ErrIntrospection) {
		t.Fatalf("GenerateAll() error = %v, want %v", err, ErrIntrospection)
	}
	if !errors.Is(err, queryErr) {
		t.Errorf("GenerateAll() error = %v, want wrapped %v", err, queryErr)
	}

	if diff := cmp.Diff([]string{filepath.Join("out", "1000-A.ts")}, paths); diff != "" {
		t.Errorf("GenerateAll() paths mismatch (-want +got):\n%s", diff)
	}

	for _, call := range catalog.Calls {
		if strings.HasSuffix(call, ":c") {
			t.Errorf("table c was queried after b failed: %v", catalog.Calls)
		}
	}
}

func TestGenerateAllListFailure(t *testing.T) {
	catalog := &mocks.MockCatalog{ListErr: errors.New("access denied")}
	g := newTestGenerator(t, catalog, afero.NewMemMapFs())

	if _, err := g.GenerateAll(context.Background(), nil); !errors.Is(err, ErrIntrospection) {
		t.Errorf("GenerateAll() error = %v, want %v", err, ErrIntrospection)
	}
}

func TestGenerateTableErrors(t *testing.T) {
	t.Run("malformed column", func(t *testing.T) {
		catalog := &mocks.MockCatalog{Tables: map[string]mocks.MockTable{
			"bad": {Columns: []db.ColumnRow{{Field: "x", Type: "enum(oops)"}}},
		}}
		g := newTestGenerator(t, catalog, afero.NewMemMapFs())

		if _, err := g.GenerateTable(context.Background(), "bad"); !errors.Is(err, ErrModel) {
			t.Errorf("GenerateTable() error = %v, want %v", err, ErrModel)
		}
	})

	t.Run("artifact write", func(t *testing.T) {
		f, err := formatter.NewTypeORMFormatter()
		if err != nil {
			t.Fatal(err)
		}
		sink := formatter.NewArtifactWriter(afero.NewMemMapFs(), "missing", f)
		g := New(schemaCatalog(), sink, WithClock(&stepClock{next: 1}))

		if _, err := g.GenerateTable(context.Background(), "users"); !errors.Is(err, ErrArtifactWrite) {
			t.Errorf("GenerateTable() error = %v, want %v", err, ErrArtifactWrite)
		}
	})
}

func TestGenerateChild(t *testing.T) {
	t.Run("table kind", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		g := newTestGenerator(t, schemaCatalog(), fs)

		path, err := g.GenerateChild(context.Background(), KindTable, "users")
		if err != nil {
			t.Fatalf("GenerateChild() error = %v", err)
		}
		if ok, _ := afero.Exists(fs, path); !ok {
			t.Errorf("expected artifact at %s", path)
		}
	})

	t.Run("unsupported kind", func(t *testing.T) {
		catalog := schemaCatalog()
		g := newTestGenerator(t, catalog, afero.NewMemMapFs())

		_, err := g.GenerateChild(context.Background(), "view", "users")
		if !errors.Is(err, ErrUnsupportedChildKind) {
			t.Errorf("GenerateChild() error = %v, want %v", err, ErrUnsupportedChildKind)
		}
		if len(catalog.Calls) != 0 {
			t.Errorf("expected no catalog queries, got %v", catalog.Calls)
		}
	})
}

func TestGenerateTableKeepsCatalogIndexOrder(t *testing.T) {
	catalog := &mocks.MockCatalog{
		Names: []string{"pairs"},
		Tables: map[string]mocks.MockTable{
			"pairs": {
				Columns: []db.ColumnRow{
					{Field: "a", Type: "int", Null: "NO", Key: "MUL"},
					{Field: "b", Type: "int", Null: "NO"},
					{Field: "c", Type: "int", Null: "NO", Key: "MUL"},
					{Field: "d", Type: "int", Null: "NO"},
				},
				Indexes: []db.IndexRow{
					{KeyName: "z_pair", ColumnName: "a", SeqInIndex: 1},
					{KeyName: "z_pair", ColumnName: "b", SeqInIndex: 2},
					{KeyName: "a_pair", ColumnName: "c", SeqInIndex: 1},
					{KeyName: "a_pair", ColumnName: "d", SeqInIndex: 2},
				},
			},
		},
	}

	fs := afero.NewMemMapFs()
	g := newTestGenerator(t, catalog, fs)

	path, err := g.GenerateTable(context.Background(), "pairs")
	if err != nil {
		t.Fatalf("GenerateTable() error = %v", err)
	}
	content := readArtifact(t, fs, path)

	zUnique := strings.Index(content, `name: "z_pair",`)
	aUnique := strings.Index(content, `name: "a_pair",`)
	if zUnique == -1 || aUnique == -1 || zUnique > aUnique {
		t.Errorf("expected z_pair declared before a_pair:\n%s", content)
	}

	zDrop := strings.Index(content, `await queryRunner.dropIndex("pairs", "z_pair");`)
	aDrop := strings.Index(content, `await queryRunner.dropIndex("pairs", "a_pair");`)
	if zDrop == -1 || aDrop == -1 || zDrop > aDrop {
		t.Errorf("expected z_pair dropped before a_pair:\n%s", content)
	}
}
