package setstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemSetStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemSetStore()
	s.AddToSet("bad-words", []string{"alpha", "beta"})

	out, err := s.InSet(ctx, "bad-words", "alpha")
	assert.NoError(err)
	assert.True(out)

	out, err = s.InSet(ctx, "bad-words", "gamma")
	assert.NoError(err)
	assert.False(out)

	out, err = s.InSet(ctx, "no-such-set", "alpha")
	assert.NoError(err)
	assert.False(out)

	vals, err := s.GetSet(ctx, "bad-words")
	assert.NoError(err)
	assert.ElementsMatch([]string{"alpha", "beta"}, vals)
}

func TestDefaultSets(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewDefaultSetStore()
	out, err := s.InSet(ctx, SetProfanity, "damn")
	assert.NoError(err)
	assert.True(out)

	out, err = s.InSet(ctx, SetViolenceWords, "kill")
	assert.NoError(err)
	assert.True(out)
}

func TestLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	assert.NoError(os.WriteFile(p, []byte(`{"profanity": ["zonk"]}`), 0644))

	s := NewDefaultSetStore()
	assert.NoError(s.LoadFromFileJSON(p))

	// file contents replace the built-in list entirely
	out, err := s.InSet(ctx, SetProfanity, "zonk")
	assert.NoError(err)
	assert.True(out)
	out, err = s.InSet(ctx, SetProfanity, "damn")
	assert.NoError(err)
	assert.False(out)
}
