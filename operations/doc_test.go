package operations

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsDocumented(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	checked := 0
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		require.NoError(t, err)
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !strings.HasPrefix(fn.Name.Name, "New") {
				continue
			}
			checked++
			if assert.NotNil(t, fn.Doc, "%s: %s", name, fn.Name.Name) {
				assert.True(t, strings.HasPrefix(fn.Doc.Text(), fn.Name.Name+" "), "%s: %s", name, fn.Name.Name)
			}
		}
	}
	assert.GreaterOrEqual(t, checked, 18)
}
