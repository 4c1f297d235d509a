package docker_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ryanmoran/qbzrun/internal"
)

type mockWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{}
}

func (m *mockWriter) write(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf.WriteString(s)
}

func (m *mockWriter) Print(v ...interface{}) {
	m.write(fmt.Sprint(v...))
}

func (m *mockWriter) Printf(format string, v ...interface{}) {
	m.write(fmt.Sprintf(format, v...))
}

func (m *mockWriter) Println(v ...interface{}) {
	m.write(fmt.Sprintln(v...))
}

func (m *mockWriter) Warning(v ...interface{}) {
	m.write("Warning: " + fmt.Sprintln(v...))
}

func (m *mockWriter) Warningf(format string, v ...interface{}) {
	m.write("Warning: " + fmt.Sprintf(format, v...) + "\n")
}

func (m *mockWriter) GetWriter() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		m.write(string(p))
		return len(p), nil
	})
}

func (m *mockWriter) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// fakePuller records the images it was asked to pull.
type fakePuller struct {
	pulled []internal.ImageName
	err    error
}

func (p *fakePuller) Pull(ctx context.Context, name internal.ImageName, w internal.Writer) error {
	p.pulled = append(p.pulled, name)
	return p.err
}
