package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fabrikgo/internal/factory"
	"github.com/vk/fabrikgo/internal/registry"
	"github.com/vk/fabrikgo/internal/strategy"
)

// writeDefinitions writes named .hcl fixtures into a fresh temp directory and
// returns its path.
func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		require.NoError(t, err)
	}
	return dir
}

// loadInto parses the fixtures and finishes the registry the way the
// application bootstrap does.
func loadInto(t *testing.T, files map[string]string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	dir := writeDefinitions(t, files)

	require.NoError(t, New(reg).LoadPath(context.Background(), dir))
	reg.Finish()
	require.NoError(t, reg.SealAll(context.Background()))
	return reg
}

func buildRecord(t *testing.T, reg *registry.Registry, name string, overrides factory.Overrides) strategy.Record {
	t.Helper()
	f, err := reg.FactoryByName(name)
	require.NoError(t, err)

	result, err := f.RunStrategy(context.Background(), strategy.TagBuild, nil, overrides)
	require.NoError(t, err)

	rec, ok := result.(strategy.Record)
	require.True(t, ok, "expected a record, got %T", result)
	return rec
}

func TestLoadPath_RoundTrip(t *testing.T) {
	t.Parallel()
	reg := loadInto(t, map[string]string{
		"users.hcl": `
sequence "email" {
  format = "user%d@example.com"
}

factory "user" {
  aliases = ["author"]

  attribute "name" {
    value = "Alice"
  }
  attribute "email" {
    expr = sequence("email")
  }
}
`,
	})

	first := buildRecord(t, reg, "user", nil)
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, "user1@example.com", first["email"])

	// Deferred expressions re-evaluate per build.
	second := buildRecord(t, reg, "author", nil)
	assert.Equal(t, "user2@example.com", second["email"])
}

func TestLoadPath_ParentAndTraits(t *testing.T) {
	t.Parallel()
	reg := loadInto(t, map[string]string{
		"users.hcl": `
factory "user" {
  attribute "role" {
    value = "member"
  }
  attribute "active" {
    value = true
  }

  trait "admin" {
    attribute "role" {
      value = "admin"
    }
  }
}

factory "admin_user" {
  parent = "user"
  traits = ["admin"]
}
`,
	})

	plain := buildRecord(t, reg, "user", nil)
	assert.Equal(t, "member", plain["role"])

	admin := buildRecord(t, reg, "admin_user", nil)
	assert.Equal(t, "admin", admin["role"], "trait defined on the parent applies to the child")
	assert.Equal(t, true, admin["active"])
}

func TestLoadPath_GlobalTraitAndOverrides(t *testing.T) {
	t.Parallel()
	reg := loadInto(t, map[string]string{
		"defs.hcl": `
trait "banned" {
  attribute "status" {
    value = "banned"
  }
}

factory "user" {
  allow_overrides = true

  attribute "status" {
    value = "active"
  }
  attribute "status" {
    value = "pending"
  }
}
`,
	})

	rec := buildRecord(t, reg, "user", nil)
	assert.Equal(t, "pending", rec["status"], "redeclaration wins when overrides are allowed")

	f, err := reg.FactoryByName("user")
	require.NoError(t, err)
	tr, err := f.TraitByName("banned")
	require.NoError(t, err)
	assert.Equal(t, "banned", tr.Name())
}

func TestLoadPath_ImplicitAndExplicitAssociations(t *testing.T) {
	t.Parallel()
	reg := loadInto(t, map[string]string{
		"defs.hcl": `
factory "account" {
  attribute "plan" {
    value = "free"
  }
}

factory "user" {
  attribute "account" {}
  attribute "billing" {
    association = "account"
  }
}
`,
	})

	rec := buildRecord(t, reg, "user", nil)

	account, ok := rec["account"].(strategy.Record)
	require.True(t, ok, "implicit association builds the named factory")
	assert.Equal(t, "free", account["plan"])

	billing, ok := rec["billing"].(strategy.Record)
	require.True(t, ok)
	assert.Equal(t, "free", billing["plan"])
}

func TestLoadPath_Errors(t *testing.T) {
	t.Parallel()

	run := func(files map[string]string) error {
		reg := registry.New()
		dir := writeDefinitions(t, files)
		return New(reg).LoadPath(context.Background(), dir)
	}

	t.Run("invalid syntax", func(t *testing.T) {
		t.Parallel()
		err := run(map[string]string{"bad.hcl": `factory "user" {`})
		require.ErrorContains(t, err, "failed to parse")
	})

	t.Run("unknown factory body attribute", func(t *testing.T) {
		t.Parallel()
		err := run(map[string]string{"bad.hcl": `
factory "user" {
  colour = "blue"
}
`})
		require.Error(t, err)
	})

	t.Run("conflicting attribute sources", func(t *testing.T) {
		t.Parallel()
		err := run(map[string]string{"bad.hcl": `
factory "user" {
  attribute "name" {
    value = "Alice"
    expr  = upper("alice")
  }
}
`})
		require.ErrorContains(t, err, "mutually exclusive")
	})

	t.Run("duplicate factory across files", func(t *testing.T) {
		t.Parallel()
		err := run(map[string]string{
			"a.hcl": `factory "user" {}`,
			"b.hcl": `factory "user" {}`,
		})
		require.ErrorIs(t, err, registry.ErrDuplicateDefinition)
	})

	t.Run("unknown default strategy", func(t *testing.T) {
		t.Parallel()
		err := run(map[string]string{"bad.hcl": `
factory "user" {
  default_strategy = "teleport"
}
`})
		require.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	})
}

func TestLoadPath_EmptyDirectory(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	require.NoError(t, New(reg).LoadPath(context.Background(), t.TempDir()))
	assert.Empty(t, reg.Factories())
}

func TestEvalFunctions(t *testing.T) {
	t.Parallel()
	reg := loadInto(t, map[string]string{
		"defs.hcl": `
factory "widget" {
  attribute "id" {
    expr = uuid()
  }
  attribute "label" {
    value = format("%s-%s", upper("big"), lower("BOLT"))
  }
}
`,
	})

	rec := buildRecord(t, reg, "widget", nil)
	assert.Len(t, rec["id"], 36, "uuid() yields a canonical textual UUID")
	assert.Equal(t, "BIG-bolt", rec["label"])
}
