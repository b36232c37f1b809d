package iostreams

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBuffered() (*IOStreams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	s := New()
	s.Out = &out
	s.ErrOut = &errOut
	s.colorEnabled = false
	return s, &out, &errOut
}

func TestQuietSuppressesOutButNotErrors(t *testing.T) {
	s, out, errOut := newBuffered()
	s.SetQuiet(true)

	s.Printf("fetched %d\n", 3)
	s.Println("done")
	s.Errorf("warning: %s\n", "skipped")

	assert.True(t, s.IsQuiet())
	assert.Empty(t, out.String())
	assert.Equal(t, "warning: skipped\n", errOut.String())
}

func TestColorDisabledReturnsPlainText(t *testing.T) {
	s, _, _ := newBuffered()
	assert.Equal(t, "ok", s.Success("ok"))
	assert.Equal(t, "bad", s.Failure("bad"))
	assert.Equal(t, "hmm", s.Warning("hmm"))
	assert.Equal(t, "dim", s.Muted("dim"))
	assert.Equal(t, "b", s.Bold("b"))
	assert.False(t, s.IsTerminal())
}

func TestProgressSkipsNonTerminal(t *testing.T) {
	s, _, errOut := newBuffered()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Progressf("fetched %d/8 pages", i)
		}()
	}
	wg.Wait()
	s.ProgressDone()

	assert.Empty(t, errOut.String())
}
