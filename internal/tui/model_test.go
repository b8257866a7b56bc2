package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

type fakeSession struct {
	loadCtx context.Context
	askCtx  context.Context
	snap    domain.Snapshot
}

func (f *fakeSession) LoadDocument(ctx context.Context, name string, data []byte) error {
	f.loadCtx = ctx
	return ctx.Err()
}

func (f *fakeSession) Ask(ctx context.Context, question string) (domain.Message, error) {
	f.askCtx = ctx
	return domain.Message{}, ctx.Err()
}

func (f *fakeSession) ClearChat() {}

func (f *fakeSession) Snapshot() domain.Snapshot { return f.snap }

// Builds and asks issued from the UI must run under the program context,
// so cancelling it reaches in-flight provider calls.
func TestCommands_UseProgramContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("some document text"), 0o644))

	sess := &fakeSession{snap: domain.Snapshot{Ready: true}}
	m := New(ctx, sess, "")

	msg := m.loadCmd(path)()
	build, ok := msg.(buildDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, build.err, context.Canceled)
	assert.Same(t, ctx, sess.loadCtx)

	msg = m.askCmd("a question")()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.ErrorIs(t, answer.err, context.Canceled)
	assert.Same(t, ctx, sess.askCtx)
}
