package instantiate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrecc/internal/ast"
	"secrecc/internal/checker"
	"secrecc/internal/errors"
	"secrecc/internal/instantiate"
	"secrecc/internal/parser"
	"secrecc/internal/types"
)

func newPipeline(t *testing.T) (*checker.Checker, *instantiate.Worklist, *errors.CompileLog) {
	t.Helper()
	ctx := types.NewContext()
	log := errors.NewCompileLog("")
	w := instantiate.New(ctx)
	c := checker.New(ctx, log, w)
	w.Attach(c)
	return c, w, log
}

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := parser.ParseString("test.sc", src)
	require.NoError(t, err)
	return m
}

func TestInstantiateSimpleTemplateCall(t *testing.T) {
	c, w, log := newPipeline(t)
	m := parse(t, `module m {
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			int y = identity(3);
		}
	}`)

	status := c.CheckModule(m)
	assert.Equal(t, checker.OK, status)
	assert.Equal(t, 1, w.Pending())

	status = w.Drain()
	assert.Equal(t, checker.OK, status)
	assert.False(t, log.HasErrors())
	assert.Equal(t, 0, w.Pending())
}

func TestInstantiateMemoizesIdenticalTypeArguments(t *testing.T) {
	c, w, log := newPipeline(t)
	m := parse(t, `module m {
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			int a = identity(3);
			int b = identity(4);
		}
	}`)

	status := c.CheckModule(m)
	assert.Equal(t, checker.OK, status)
	assert.False(t, log.HasErrors())
	assert.Equal(t, 1, w.Pending(), "both calls bind D=public,T=int64 and should share one instantiation")

	status = w.Drain()
	assert.Equal(t, checker.OK, status)
	assert.Equal(t, 0, w.Pending())
}

func TestInstantiateDistinctTypeArgumentsProduceSeparateInstances(t *testing.T) {
	c, w, log := newPipeline(t)
	m := parse(t, `module m {
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			int a = identity(3);
			bool b = identity(true);
		}
	}`)

	status := c.CheckModule(m)
	assert.Equal(t, checker.OK, status)
	assert.False(t, log.HasErrors())
	assert.Equal(t, 2, w.Pending())

	status = w.Drain()
	assert.Equal(t, checker.OK, status)
	assert.False(t, log.HasErrors())
}

func TestInstantiateBindsDomainQuantifierFromAPrivateArgument(t *testing.T) {
	c, w, log := newPipeline(t)
	m := parse(t, `module m {
		kind additive3pp { type int32; }
		domain priv additive3pp;
		template<domain D, type T>
		D T identity(D T x) {
			return x;
		}
		void main() {
			priv int p;
			priv int r = identity(p);
		}
	}`)

	status := c.CheckModule(m)
	assert.Equal(t, checker.OK, status)
	require.Equal(t, 1, w.Pending())

	status = w.Drain()
	assert.Equal(t, checker.OK, status)
	assert.False(t, log.HasErrors(), "the cloned body's `D T x` parameter annotation should resolve D to the concrete `priv` domain")
}
